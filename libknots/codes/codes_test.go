package codes

import (
	"testing"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var (
	trefoil = MustFromTuples([][][2]int{
		{{+1, +1}, {-2, +1}, {+3, +1}, {-1, +1}, {+2, +1}, {-3, +1}},
	})
	hopf = MustFromTuples([][][2]int{
		{{+1, -1}, {-2, -1}},
		{{-1, -1}, {+2, -1}},
	})
	infinity = MustFromTuples([][][2]int{
		{{1, -1}, {-1, -1}},
	})
	link1 = MustFromTuples([][][2]int{
		{{1, -1}, {-4, -1}, {2, -1}, {-1, -1}, {-6, -1}, {3, -1}, {4, -1}, {-2, -1}},
		{{-3, -1}, {5, -1}, {-5, -1}, {6, -1}},
	})
)

func TestValidate(t *testing.T) {
	require.NoError(t, trefoil.Validate())
	require.NoError(t, hopf.Validate())
	require.NoError(t, link1.Validate())
	require.NoError(t, MustFromTuples([][][2]int{{}}).Validate())

	err := SGCode{}.Validate()
	require.True(t, errors.Is(err, goknots.ErrEmptyLink))

	err = MustFromTuples([][][2]int{{{1, 1}}}).Validate()
	require.True(t, errors.Is(err, goknots.ErrMissingCrossing))

	err = MustFromTuples([][][2]int{{{1, 1}, {-1, -1}}}).Validate()
	require.True(t, errors.Is(err, goknots.ErrMalformedCode))
	require.Contains(t, err.Error(), "crossing 1")

	err = MustFromTuples([][][2]int{{{1, 1}, {1, 1}, {-1, 1}}}).Validate()
	require.True(t, errors.Is(err, goknots.ErrMalformedCode))

	_, err = FromTuples([][][2]int{{{0, 1}}})
	require.True(t, errors.Is(err, goknots.ErrMalformedCode))
	_, err = FromTuples([][][2]int{{{1, 2}}})
	require.True(t, errors.Is(err, goknots.ErrMalformedCode))
}

func TestWrithe(t *testing.T) {
	require.Equal(t, 3, trefoil.Writhe())
	require.Equal(t, -2, hopf.Writhe())
	require.Equal(t, 3, trefoil.NumCrossings())

	hand, ok := hopf.Handedness(2)
	require.True(t, ok)
	require.Equal(t, Right, hand)
	_, ok = hopf.Handedness(7)
	require.False(t, ok)
	require.Equal(t, [][][2]int{{{1, -1}, {-1, -1}}}, infinity.Tuples())
}

func TestInvolutions(t *testing.T) {
	for _, D := range []SGCode{trefoil, hopf, infinity, link1} {
		require.True(t, D.Mirror().Mirror().Equal(D))
		require.True(t, D.ReverseAll().ReverseAll().Equal(D))
		require.Equal(t, -D.Writhe(), D.Mirror().Writhe())

		for _, comp := range D.Components {
			for _, occ := range comp {
				S, err := D.SwitchCrossing(occ.ID)
				require.NoError(t, err)
				require.NoError(t, S.Validate())
				SS, err := S.SwitchCrossing(occ.ID)
				require.NoError(t, err)
				require.True(t, SS.Equal(D))
			}
		}
	}

	_, err := trefoil.SwitchCrossing(9)
	require.True(t, errors.Is(err, goknots.ErrMissingCrossing))
}

func TestSwitchCrossing(t *testing.T) {
	S, err := infinity.SwitchCrossing(1)
	require.NoError(t, err)
	require.Equal(t, [][][2]int{{{-1, 1}, {1, 1}}}, S.Tuples())
}

func TestReverse(t *testing.T) {
	require.True(t, hopf.Reverse(0, 1).Equal(hopf.ReverseAll()))

	R := hopf.Reverse(0)
	require.Equal(t, [][][2]int{
		{{-2, 1}, {1, 1}},
		{{-1, 1}, {2, 1}},
	}, R.Tuples())
	require.NoError(t, R.Validate())
	require.True(t, R.Reverse(0).Equal(hopf))
}

func TestSplicesInfinity(t *testing.T) {
	V, err := infinity.SpliceV(1)
	require.NoError(t, err)
	require.Equal(t, [][][2]int{{}, {}}, V.Tuples())

	H, err := infinity.SpliceH(1)
	require.NoError(t, err)
	require.Equal(t, [][][2]int{{}}, H.Tuples())
}

func TestLinkSplices(t *testing.T) {
	H, err := link1.SpliceH(6)
	require.NoError(t, err)

	// crossing 3 joins the reversed part of the under strand to the rest of the over strand
	require.Equal(t, [][][2]int{
		{{-3, 1}, {5, -1}, {-5, -1}, {-1, -1}, {2, -1}, {-4, -1}, {1, -1}, {-2, -1}, {4, -1}, {3, 1}},
	}, H.Tuples())
	require.NoError(t, H.Validate())

	V, err := link1.SpliceV(6)
	require.NoError(t, err)
	require.Equal(t, [][][2]int{
		{{-3, -1}, {5, -1}, {-5, -1}, {3, -1}, {4, -1}, {-2, -1}, {1, -1}, {-4, -1}, {2, -1}, {-1, -1}},
	}, V.Tuples())
	require.NoError(t, V.Validate())

	// a self crossing: the split keeps orientation, the join reverses the inner arc
	S1, err := trefoil.SpliceH(1)
	require.NoError(t, err)
	require.Equal(t, [][][2]int{
		{{2, 1}, {-3, 1}},
		{{-2, 1}, {3, 1}},
	}, S1.Tuples())

	S2, err := trefoil.SpliceV(1)
	require.NoError(t, err)
	require.Equal(t, [][][2]int{
		{{3, -1}, {-2, -1}, {2, -1}, {-3, -1}},
	}, S2.Tuples())
	require.Equal(t, 2, S2.NumCrossings())
}

func TestConnectedComponents(t *testing.T) {
	D := MustFromTuples([][][2]int{
		{{1, -1}, {-4, -1}, {2, -1}, {-1, -1}, {-6, -1}, {3, -1}, {4, -1}, {-2, -1}},
		{{-3, -1}, {5, -1}, {-5, -1}, {6, -1}},
		{{7, -1}, {-7, -1}},
	})
	require.Equal(t, [][]int{{0, 1}, {2}}, D.ConnectedComponents())

	groups, err := D.OverliesDecomposition()
	require.NoError(t, err)
	require.Equal(t, [][]int{{2}, {0, 1}}, groups)
}

func TestOverliesDecomposition(t *testing.T) {
	groups, err := hopf.OverliesDecomposition()
	require.NoError(t, err)
	require.Equal(t, [][]int{{0, 1}}, groups)

	unlinked := MustFromTuples([][][2]int{
		{{1, 1}, {2, -1}},
		{{-1, 1}, {-2, -1}},
	})
	groups, err = unlinked.OverliesDecomposition()
	require.NoError(t, err)
	require.Equal(t, [][]int{{0}, {1}}, groups)
	require.Equal(t, [][]int{{1}, nil}, unlinked.Overlies())

	groups, err = trefoil.OverliesDecomposition()
	require.NoError(t, err)
	require.Equal(t, [][]int{{0}}, groups)
}

func TestSublink(t *testing.T) {
	D := MustFromTuples([][][2]int{
		{{1, 1}, {-3, 1}, {3, 1}},
		{{-1, 1}},
	})
	require.NoError(t, D.Validate())
	require.Equal(t, [][][2]int{{{-3, 1}, {3, 1}}}, D.Sublink([]int{0}).Tuples())
	require.Equal(t, [][][2]int{{}}, D.Sublink([]int{1}).Tuples())
	require.True(t, D.Sublink([]int{0, 1}).Equal(D))
}

func TestStandardForm(t *testing.T) {
	id, ok := trefoil.FirstViolation()
	require.True(t, ok)
	require.Equal(t, CrossingID(2), id)
	require.Equal(t, []CrossingID{2}, trefoil.SwitchingSequence())

	std, err := trefoil.ToStdUnknot()
	require.NoError(t, err)
	_, ok = std.FirstViolation()
	require.False(t, ok)

	_, ok = infinity.FirstViolation()
	require.False(t, ok)
}

func TestCanonical(t *testing.T) {
	D := MustFromTuples([][][2]int{{{5, 1}, {-7, 1}, {7, 1}, {-5, 1}}})
	R := MustFromTuples([][][2]int{{{-7, 1}, {7, 1}, {-5, 1}, {5, 1}}})
	require.Equal(t, D.Key(), R.Key())
	require.Equal(t, [][][2]int{{{1, 1}, {-2, 1}, {2, 1}, {-1, 1}}}, D.Canonical().Tuples())

	for _, X := range []SGCode{D, trefoil, hopf, link1} {
		relabeled := X.Relabel()
		require.True(t, relabeled.Relabel().Equal(relabeled))
		minimal := X.ToMinimal()
		require.True(t, minimal.ToMinimal().Equal(minimal))
	}

	require.NotEqual(t, trefoil.Key(), trefoil.Mirror().Key())
}

func TestPDTrefoil(t *testing.T) {
	PD, err := ParsePD("[(3,6,4,1),(5,2,6,3),(1,4,2,5)]")
	require.NoError(t, err)
	require.Equal(t, -3, PD.Writhe())

	D, err := PD.ToSGCode()
	require.NoError(t, err)
	require.Equal(t, [][][2]int{
		{{-3, -1}, {2, -1}, {-1, -1}, {3, -1}, {-2, -1}, {1, -1}},
	}, D.Tuples())
	require.Equal(t, -3, D.Writhe())

	// a rotation of the mirrored trefoil
	require.True(t, D.ToMinimal().Equal(trefoil.Mirror().ToMinimal()))
}

func TestParsePD(t *testing.T) {
	want := PDCode{Crossings: []PDCrossing{{1, 5, 2, 4}, {3, 1, 4, 6}, {5, 3, 6, 2}}}
	for _, text := range []string{
		"[[1,5,2,4],[3,1,4,6],[5,3,6,2]]",
		"[(1, 5, 2, 4), (3, 1, 4, 6), (5, 3, 6, 2)]",
		"{{1,5,2,4},{3,1,4,6},{5,3,6,2}}",
		"PD[X[1, 5, 2, 4], X[3, 1, 4, 6], X[5, 3, 6, 2]]",
	} {
		PD, err := ParsePD(text)
		require.NoError(t, err, text)
		require.Equal(t, want, PD, text)
	}

	for _, text := range []string{
		"[[1,5,2,4],[3,1,4,6]",
		"[[1,5,2,4)]",
		"{{1,5,2}}",
		"PD[Y[1,5,2,4]]",
	} {
		_, err := ParsePD(text)
		require.True(t, errors.Is(err, goknots.ErrParse), text)
	}

	_, err := PDCode{Crossings: []PDCrossing{{1, 2, 3, 4}}}.ToSGCode()
	require.True(t, errors.Is(err, goknots.ErrBadPDCode))
}

func TestParseSGCode(t *testing.T) {
	D, err := ParseSGCode("[[(1,-1),(-1,-1)],[]]")
	require.NoError(t, err)
	require.Equal(t, [][][2]int{{{1, -1}, {-1, -1}}, {}}, D.Tuples())
	require.Equal(t, "[[(1,-1),(-1,-1)],[]]", D.String())

	D2, err := ParseSGCode(trefoil.String())
	require.NoError(t, err)
	require.True(t, D2.Equal(trefoil))

	_, err = ParseSGCode("[[(1,-1),(-1,-1)]")
	require.True(t, errors.Is(err, goknots.ErrParse))

	// ids must fit a CrossingID rather than wrap onto a smaller one
	_, err = ParseSGCode("[[(4294967297,1),(-1,1)]]")
	require.True(t, errors.Is(err, goknots.ErrMalformedCode))
	_, err = ParseSGCode("[[(2147483647,1),(-2147483647,1)]]")
	require.NoError(t, err)

	D3, err := ParseDiagram("[[4,2,5,1],[2,6,3,5],[6,4,1,3]]")
	require.NoError(t, err)
	require.Equal(t, 3, D3.NumCrossings())

	D4, err := ParseDiagram("[[]]")
	require.NoError(t, err)
	require.Equal(t, 1, D4.NumComponents())

	_, err = ParseDiagram("((")
	require.True(t, errors.Is(err, goknots.ErrParse))
}
