package poly

import (
	"math/big"

	"github.com/2x3systems/goknots/goknots"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// PolyExpr is a sum of products, e.g. "(-2*a - a^-1) + (1 + a**-2)*z".
type PolyExpr struct {
	Neg   bool       `parser:"@\"-\"?"`
	First *PolyTerm  `parser:"@@"`
	Rest  []*PolySum `parser:"@@*"`
}

type PolySum struct {
	Op   string    `parser:"@(\"+\" | \"-\")"`
	Term *PolyTerm `parser:"@@"`
}

type PolyTerm struct {
	First *PolyFactor `parser:"@@"`
	Rest  []*PolyProd `parser:"@@*"`
}

type PolyProd struct {
	Op     string      `parser:"@(\"*\" | \"/\")"`
	Factor *PolyFactor `parser:"@@"`
}

type PolyFactor struct {
	Base *PolyAtom   `parser:"@@"`
	Exp  *PolySigned `parser:"( (\"^\" | \"**\") @@ )?"`
}

type PolySigned struct {
	Neg   bool `parser:"@\"-\"?"`
	Value int  `parser:"@Int"`
}

type PolyAtom struct {
	Int *string   `parser:"  @Int"`
	Var *string   `parser:"| @Ident"`
	Sub *PolyExpr `parser:"| \"(\" @@ \")\""`
}

var polyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Pow", Pattern: `\*\*`},
	{Name: "Punct", Pattern: `[-+*/^()]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parsePolyExpr = participle.MustBuild[PolyExpr](
	participle.Lexer(polyLexer),
	participle.Elide("whitespace"),
)

// Parse reads a polynomial written in the ring's variables, as emitted by Poly.String()
// or in the usual "**" power notation.
func Parse(expr string, vars Vars) (Poly, error) {
	ast, err := parsePolyExpr.ParseString("", expr)
	if err != nil {
		return Poly{}, errors.Wrap(goknots.ErrParse, err.Error())
	}
	return ast.eval(vars)
}

// MustParse is Parse for known-good constants.
func MustParse(expr string, vars Vars) Poly {
	P, err := Parse(expr, vars)
	if err != nil {
		panic(err)
	}
	return P
}

func (e *PolyExpr) eval(vars Vars) (Poly, error) {
	sum, err := e.First.eval(vars)
	if err != nil {
		return Poly{}, err
	}
	if e.Neg {
		sum = sum.Neg()
	}
	for _, op := range e.Rest {
		term, err := op.Term.eval(vars)
		if err != nil {
			return Poly{}, err
		}
		if op.Op == "-" {
			sum = sum.Sub(term)
		} else {
			sum = sum.Add(term)
		}
	}
	return sum, nil
}

func (t *PolyTerm) eval(vars Vars) (Poly, error) {
	prod, err := t.First.eval(vars)
	if err != nil {
		return Poly{}, err
	}
	for _, op := range t.Rest {
		f, err := op.Factor.eval(vars)
		if err != nil {
			return Poly{}, err
		}
		if op.Op == "/" {
			if prod, err = prod.Div(f); err != nil {
				return Poly{}, err
			}
		} else {
			prod = prod.Mul(f)
		}
	}
	return prod, nil
}

func (f *PolyFactor) eval(vars Vars) (Poly, error) {
	base, err := f.Base.eval(vars)
	if err != nil || f.Exp == nil {
		return base, err
	}
	n := f.Exp.Value
	if f.Exp.Neg {
		n = -n
	}
	return base.Pow(n)
}

func (a *PolyAtom) eval(vars Vars) (Poly, error) {
	switch {
	case a.Int != nil:
		c, ok := new(big.Rat).SetString(*a.Int)
		if !ok {
			return Poly{}, errors.Wrapf(goknots.ErrParse, "bad integer %q", *a.Int)
		}
		return Monomial(vars, c, 0, 0), nil
	case a.Var != nil:
		for i, name := range vars {
			if name != "" && name == *a.Var {
				return Var(vars, i, 1), nil
			}
		}
		return Poly{}, errors.Wrapf(goknots.ErrUnknownVar, "%q not in %v", *a.Var, vars)
	case a.Sub != nil:
		return a.Sub.eval(vars)
	}
	return Poly{}, goknots.ErrParse
}
