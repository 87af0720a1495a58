package skein

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/codes"
	"github.com/2x3systems/goknots/libknots/poly"
)

// Step is one skein reduction: the diagrams it depends on and how their values combine.
type Step struct {
	Legs    []codes.SGCode
	Combine func(legs []poly.Poly) poly.Poly
}

// Rule is the fixed recursion of one invariant family.
type Rule struct {
	Family goknots.Family
	Vars   poly.Vars

	// Disjoint is the factor d contributed by each additional split group (nil if the family has none).
	Disjoint *poly.Poly

	// Unoriented marks families whose value does not depend on component orientation.
	Unoriented bool

	// Unknot returns the value of a single-group diagram in standard unknot form.
	Unknot func(D codes.SGCode) poly.Poly

	// Skein reduces D at crossing id through the family's skein identity.
	Skein func(D codes.SGCode, id codes.CrossingID) (Step, error)
}

var (
	kauffmanVars = poly.Vars{"a", "z"}
	homflyVars   = poly.Vars{"v", "z"}
)

// Kauffman returns the rule of the Kauffman L polynomial (regular isotopy, variables a and z):
//
//	L(D) = z*(L(S_h) + L(S_v)) - L(S)
//
// where S is D with the crossing switched and S_h, S_v are the two smoothings of S at that crossing.
func Kauffman() Rule {
	a := poly.Var(kauffmanVars, 0, 1)
	z := poly.Var(kauffmanVars, 1, 1)
	one := poly.Const(kauffmanVars, 1)

	// d = (a + 1/a)/z - 1
	d := a.Add(a.MustPow(-1)).Mul(z.MustPow(-1)).Sub(one)

	return Rule{
		Family:     goknots.Family_Kauffman,
		Vars:       kauffmanVars,
		Disjoint:   &d,
		Unoriented: true,
		Unknot: func(D codes.SGCode) poly.Poly {
			return a.MustPow(D.Writhe())
		},
		Skein: func(D codes.SGCode, id codes.CrossingID) (Step, error) {
			S, err := D.SwitchCrossing(id)
			if err != nil {
				return Step{}, err
			}
			H, err := S.SpliceH(id)
			if err != nil {
				return Step{}, err
			}
			V, err := S.SpliceV(id)
			if err != nil {
				return Step{}, err
			}
			return Step{
				Legs: []codes.SGCode{S, H, V},
				Combine: func(L []poly.Poly) poly.Poly {
					return z.Mul(L[1].Add(L[2])).Sub(L[0])
				},
			}, nil
		},
	}
}

// Homfly returns the rule of the HOMFLY-P polynomial (variables v and z), normalized so the unknot is 1:
//
//	v^-1 P(L+) - v P(L-) = z P(L0)
//
// solved for whichever of L+ or L- the reduced crossing is.
func Homfly() Rule {
	v := poly.Var(homflyVars, 0, 1)
	z := poly.Var(homflyVars, 1, 1)
	one := poly.Const(homflyVars, 1)
	vinv := v.MustPow(-1)

	// d = (1/v - v)/z
	d := vinv.Sub(v).Mul(z.MustPow(-1))

	return Rule{
		Family:   goknots.Family_Homfly,
		Vars:     homflyVars,
		Disjoint: &d,
		Unknot: func(D codes.SGCode) poly.Poly {
			return one
		},
		Skein: func(D codes.SGCode, id codes.CrossingID) (Step, error) {
			_, over, err := D.Locate(id)
			if err != nil {
				return Step{}, err
			}
			hand := D.Components[over.Comp][over.Index].Hand

			S, err := D.SwitchCrossing(id)
			if err != nil {
				return Step{}, err
			}

			// the oriented smoothing
			splice := D.SpliceH
			if hand == codes.Right {
				splice = D.SpliceV
			}
			L0, err := splice(id)
			if err != nil {
				return Step{}, err
			}

			step := Step{
				Legs: []codes.SGCode{S, L0},
			}
			if hand == codes.Left {
				// P(L+) = v*(z*P(L0) + v*P(L-))
				step.Combine = func(P []poly.Poly) poly.Poly {
					return v.Mul(z.Mul(P[1]).Add(v.Mul(P[0])))
				}
			} else {
				// P(L-) = (P(L+)/v - z*P(L0))/v
				step.Combine = func(P []poly.Poly) poly.Poly {
					return vinv.Mul(vinv.Mul(P[0]).Sub(z.Mul(P[1])))
				}
			}
			return step, nil
		},
	}
}
