package codes

import (
	"github.com/2x3systems/goknots/goknots"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// PDExpr accepts "[[1,5,2,4],...]", "[(1,5,2,4),...]", "{{1,5,2,4},...}" and "PD[X[1,5,2,4],...]".
type PDExpr struct {
	Mathematica *PDMathematica `parser:"  \"PD\" \"[\" @@? \"]\""`
	Bracketed   *PDBracketed   `parser:"| \"[\" @@? \"]\""`
	Curly       *PDCurly       `parser:"| \"{\" @@? \"}\""`
}

type PDMathematica struct {
	Crossings []*PDTuple `parser:"\"X\" \"[\" @@ \"]\" ( \",\" \"X\" \"[\" @@ \"]\" )*"`
}

type PDBracketed struct {
	Squares []*PDTuple `parser:"  \"[\" @@ \"]\" ( \",\" \"[\" @@ \"]\" )*"`
	Parens  []*PDTuple `parser:"| \"(\" @@ \")\" ( \",\" \"(\" @@ \")\" )*"`
}

type PDCurly struct {
	Crossings []*PDTuple `parser:"\"{\" @@ \"}\" ( \",\" \"{\" @@ \"}\" )*"`
}

type PDTuple struct {
	Arcs []int32 `parser:"@Int \",\" @Int \",\" @Int \",\" @Int"`
}

// SGCExpr accepts "[[(1,-1),(-1,-1)],[]]": components of (signed id, handedness) pairs.
type SGCExpr struct {
	Components []*SGCComponent `parser:"\"[\" ( @@ ( \",\" @@ )* )? \"]\""`
}

type SGCComponent struct {
	Open        string      `parser:"@\"[\""`
	Occurrences []*SGCTuple `parser:"( @@ ( \",\" @@ )* )? \"]\""`
}

type SGCTuple struct {
	ID   int `parser:"\"(\" @Int \",\""`
	Hand int `parser:"@Int \")\""`
}

var codesLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Punct", Pattern: `[\[\](){},]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var (
	parsePDExpr = participle.MustBuild[PDExpr](
		participle.Lexer(codesLexer),
		participle.Elide("whitespace"),
	)
	parseSGCExpr = participle.MustBuild[SGCExpr](
		participle.Lexer(codesLexer),
		participle.Elide("whitespace"),
	)
)

// ParsePD reads a PD code in any of the supported bracket conventions.
func ParsePD(text string) (PDCode, error) {
	expr, err := parsePDExpr.ParseString("", text)
	if err != nil {
		return PDCode{}, errors.Wrap(goknots.ErrParse, err.Error())
	}

	var tuples []*PDTuple
	switch {
	case expr.Mathematica != nil:
		tuples = expr.Mathematica.Crossings
	case expr.Bracketed != nil:
		tuples = append(expr.Bracketed.Squares, expr.Bracketed.Parens...)
	case expr.Curly != nil:
		tuples = expr.Curly.Crossings
	}

	PD := PDCode{
		Crossings: make([]PDCrossing, len(tuples)),
	}
	for i, t := range tuples {
		copy(PD.Crossings[i][:], t.Arcs)
	}
	return PD, nil
}

// ParseSGCode reads a signed Gauss code in tuple form.
func ParseSGCode(text string) (SGCode, error) {
	expr, err := parseSGCExpr.ParseString("", text)
	if err != nil {
		return SGCode{}, errors.Wrap(goknots.ErrParse, err.Error())
	}

	tuples := make([][][2]int, len(expr.Components))
	for ci, comp := range expr.Components {
		tuples[ci] = make([][2]int, len(comp.Occurrences))
		for i, occ := range comp.Occurrences {
			tuples[ci][i] = [2]int{occ.ID, occ.Hand}
		}
	}
	return FromTuples(tuples)
}

// ParseDiagram reads either a PD code or a signed Gauss code and returns it as an SGCode.
func ParseDiagram(text string) (SGCode, error) {
	PD, pdErr := ParsePD(text)
	if pdErr == nil && len(PD.Crossings) > 0 {
		return PD.ToSGCode()
	}
	D, err := ParseSGCode(text)
	if err != nil {
		if pdErr != nil {
			return SGCode{}, errors.Wrapf(goknots.ErrParse, "neither a PD code (%v) nor a signed gauss code (%v)", pdErr, err)
		}
		return SGCode{}, err
	}
	return D, nil
}
