package poly

import (
	"math/big"
	"strings"

	"github.com/2x3systems/goknots/goknots"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

// Vars names the two formal variables of a polynomial ring, e.g. {"a", "z"}.
// The zero Vars is the ring of rational constants and combines with any other Vars.
type Vars [2]string

// Exp is the exponent pair of a monomial, indexed like Vars.
type Exp [2]int32

// Term is a single monomial Coef * x^Exp[0] * y^Exp[1].
type Term struct {
	Exp  Exp
	Coef *big.Rat
}

// Poly is an immutable Laurent polynomial in at most two named variables over the rationals.
//
// Terms are always collected and sorted by Exp (second variable major) with zero coefficients dropped,
// so two Polys are equal exactly when their terms are structurally equal.
type Poly struct {
	Vars  Vars
	terms []Term
}

func compareExp(A, B interface{}) int {
	a := A.(Exp)
	b := B.(Exp)
	for i := 1; i >= 0; i-- {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// collect sums like terms and returns the canonical Poly.
func collect(vars Vars, terms []Term) Poly {
	tree := redblacktree.NewWith(compareExp)
	for _, t := range terms {
		if t.Coef.Sign() == 0 {
			continue
		}
		if sum, found := tree.Get(t.Exp); found {
			sum.(*big.Rat).Add(sum.(*big.Rat), t.Coef)
		} else {
			tree.Put(t.Exp, new(big.Rat).Set(t.Coef))
		}
	}

	P := Poly{Vars: vars}
	P.terms = make([]Term, 0, tree.Size())
	for it := tree.Iterator(); it.Next(); {
		c := it.Value().(*big.Rat)
		if c.Sign() != 0 {
			P.terms = append(P.terms, Term{Exp: it.Key().(Exp), Coef: c})
		}
	}
	return P
}

// Zero returns the zero polynomial of the given ring.
func Zero(vars Vars) Poly {
	return Poly{Vars: vars}
}

// Const returns the integer constant c.
func Const(vars Vars, c int64) Poly {
	return Monomial(vars, big.NewRat(c, 1), 0, 0)
}

// Monomial returns c * x^e0 * y^e1.
func Monomial(vars Vars, c *big.Rat, e0, e1 int32) Poly {
	if c.Sign() == 0 {
		return Zero(vars)
	}
	return Poly{
		Vars:  vars,
		terms: []Term{{Exp: Exp{e0, e1}, Coef: new(big.Rat).Set(c)}},
	}
}

// Var returns the i-th variable (0 or 1) raised to the given power.
func Var(vars Vars, i int, pow int32) Poly {
	var e Exp
	e[i] = pow
	return Monomial(vars, big.NewRat(1, 1), e[0], e[1])
}

// FromTerms collects the given terms into a canonical Poly.
func FromTerms(vars Vars, terms ...Term) Poly {
	return collect(vars, terms)
}

func (P Poly) ring(Q Poly) Vars {
	switch {
	case P.Vars == Q.Vars:
		return P.Vars
	case P.Vars == Vars{}:
		return Q.Vars
	case Q.Vars == Vars{}:
		return P.Vars
	}
	panic(errors.Wrapf(goknots.ErrVarsMismatch, "%v vs %v", P.Vars, Q.Vars))
}

// Terms returns the canonical terms of P; callers must not modify them.
func (P Poly) Terms() []Term {
	return P.terms
}

func (P Poly) NumTerms() int {
	return len(P.terms)
}

func (P Poly) IsZero() bool {
	return len(P.terms) == 0
}

func (P Poly) IsMonomial() bool {
	return len(P.terms) == 1
}

// Coefficient returns the coefficient of x^e0 * y^e1 (zero if absent).
func (P Poly) Coefficient(e0, e1 int32) *big.Rat {
	for _, t := range P.terms {
		if t.Exp == (Exp{e0, e1}) {
			return new(big.Rat).Set(t.Coef)
		}
	}
	return new(big.Rat)
}

// Equal reports structural equality. Vars are compared only when both sides name them.
func (P Poly) Equal(Q Poly) bool {
	if P.Vars != Q.Vars && P.Vars != (Vars{}) && Q.Vars != (Vars{}) {
		return false
	}
	if len(P.terms) != len(Q.terms) {
		return false
	}
	for i, t := range P.terms {
		if t.Exp != Q.terms[i].Exp || t.Coef.Cmp(Q.terms[i].Coef) != 0 {
			return false
		}
	}
	return true
}

func (P Poly) Add(Q Poly) Poly {
	vars := P.ring(Q)
	terms := make([]Term, 0, len(P.terms)+len(Q.terms))
	terms = append(terms, P.terms...)
	terms = append(terms, Q.terms...)
	return collect(vars, terms)
}

func (P Poly) Neg() Poly {
	return P.ScaleRat(big.NewRat(-1, 1))
}

func (P Poly) Sub(Q Poly) Poly {
	return P.Add(Q.Neg())
}

// ScaleRat returns c * P.
func (P Poly) ScaleRat(c *big.Rat) Poly {
	if c.Sign() == 0 {
		return Zero(P.Vars)
	}
	out := Poly{
		Vars:  P.Vars,
		terms: make([]Term, len(P.terms)),
	}
	for i, t := range P.terms {
		out.terms[i] = Term{Exp: t.Exp, Coef: new(big.Rat).Mul(t.Coef, c)}
	}
	return out
}

func (P Poly) Mul(Q Poly) Poly {
	vars := P.ring(Q)
	terms := make([]Term, 0, len(P.terms)*len(Q.terms))
	for _, p := range P.terms {
		for _, q := range Q.terms {
			terms = append(terms, Term{
				Exp:  Exp{p.Exp[0] + q.Exp[0], p.Exp[1] + q.Exp[1]},
				Coef: new(big.Rat).Mul(p.Coef, q.Coef),
			})
		}
	}
	return collect(vars, terms)
}

// Inverse returns 1/P, defined only when P is a non-zero monomial.
func (P Poly) Inverse() (Poly, error) {
	if !P.IsMonomial() {
		return Poly{}, errors.Wrapf(goknots.ErrNotMonomial, "cannot invert %v", P)
	}
	t := P.terms[0]
	return Monomial(P.Vars, new(big.Rat).Inv(t.Coef), -t.Exp[0], -t.Exp[1]), nil
}

// Div returns P / Q where Q must be a non-zero monomial.
func (P Poly) Div(Q Poly) (Poly, error) {
	inv, err := Q.Inverse()
	if err != nil {
		return Poly{}, err
	}
	return P.Mul(inv), nil
}

// Pow raises P to an integer power; negative powers require P to be a monomial.
func (P Poly) Pow(n int) (Poly, error) {
	base := P
	if n < 0 {
		var err error
		if base, err = P.Inverse(); err != nil {
			return Poly{}, err
		}
		n = -n
	}

	out := Const(P.Vars, 1)
	for n > 0 {
		if n&1 != 0 {
			out = out.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return out, nil
}

// MustPow is Pow for callers that know P is a monomial or n >= 0.
func (P Poly) MustPow(n int) Poly {
	out, err := P.Pow(n)
	if err != nil {
		panic(err)
	}
	return out
}

func (P Poly) varName(i int) string {
	if P.Vars[i] != "" {
		return P.Vars[i]
	}
	return [2]string{"x", "y"}[i]
}

// String formats P as a sum of monomials in ascending exponent order, e.g. "-a^-1 - 2*a + z".
// The output is accepted back by Parse.
func (P Poly) String() string {
	if len(P.terms) == 0 {
		return "0"
	}

	var b strings.Builder
	for i, t := range P.terms {
		coef := new(big.Rat).Set(t.Coef)
		if coef.Sign() < 0 {
			coef.Neg(coef)
			if i == 0 {
				b.WriteString("-")
			} else {
				b.WriteString(" - ")
			}
		} else if i > 0 {
			b.WriteString(" + ")
		}

		factors := make([]string, 0, 3)
		isOne := coef.IsInt() && coef.Num().IsInt64() && coef.Num().Int64() == 1
		if !isOne || t.Exp == (Exp{}) {
			if coef.IsInt() {
				factors = append(factors, coef.Num().String())
			} else {
				factors = append(factors, coef.Num().String()+"/"+coef.Denom().String())
			}
		}
		for vi := 0; vi < 2; vi++ {
			switch e := t.Exp[vi]; e {
			case 0:
			case 1:
				factors = append(factors, P.varName(vi))
			default:
				factors = append(factors, P.varName(vi)+"^"+big.NewInt(int64(e)).String())
			}
		}
		b.WriteString(strings.Join(factors, "*"))
	}
	return b.String()
}
