package skein

import (
	"sync"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/codes"
	"github.com/2x3systems/goknots/libknots/poly"
	"github.com/pkg/errors"
)

var (
	defaultsOnce    sync.Once
	defaultKauffman *Evaluator
	defaultHomfly   *Evaluator
)

func defaults() {
	defaultsOnce.Do(func() {
		var err error
		if defaultKauffman, err = NewEvaluator(Kauffman()); err != nil {
			panic(err)
		}
		if defaultHomfly, err = NewEvaluator(Homfly()); err != nil {
			panic(err)
		}
	})
}

// KauffmanPolynomial returns the Kauffman L polynomial of D in a and z.
func KauffmanPolynomial(D codes.SGCode) (poly.Poly, error) {
	defaults()
	return defaultKauffman.Evaluate(D)
}

// FPolynomial returns the writhe-normalized Kauffman polynomial a^-writhe * L(D).
func FPolynomial(D codes.SGCode) (poly.Poly, error) {
	defaults()
	return Compute(defaultKauffman, goknots.Family_FPoly, D)
}

// HomflyPolynomial returns the HOMFLY-P polynomial of D in v and z.
func HomflyPolynomial(D codes.SGCode) (poly.Poly, error) {
	defaults()
	return defaultHomfly.Evaluate(D)
}

// NormalizeWrithe returns a^-writhe * L.
func NormalizeWrithe(L poly.Poly, writhe int) poly.Poly {
	a := poly.Var(kauffmanVars, 0, 1)
	return a.MustPow(-writhe).Mul(L)
}

// Compute evaluates the given family of D with ev, which must evaluate the family
// (or, for Family_FPoly, the Kauffman family).
func Compute(ev *Evaluator, family goknots.Family, D codes.SGCode) (poly.Poly, error) {
	want := family
	if family == goknots.Family_FPoly {
		want = goknots.Family_Kauffman
	}
	if ev.rule.Family != want {
		return poly.Poly{}, errors.Errorf("evaluator for %v cannot compute %v", ev.rule.Family, family)
	}

	P, err := ev.Evaluate(D)
	if err != nil {
		return poly.Poly{}, err
	}
	if family == goknots.Family_FPoly {
		P = NormalizeWrithe(P, D.Writhe())
	}
	return P, nil
}

// RuleFor returns the recursion rule evaluating the given family.
func RuleFor(family goknots.Family) (Rule, error) {
	switch family {
	case goknots.Family_Kauffman, goknots.Family_FPoly:
		return Kauffman(), nil
	case goknots.Family_Homfly:
		return Homfly(), nil
	}
	return Rule{}, errors.Errorf("unknown invariant family %q", byte(family))
}
