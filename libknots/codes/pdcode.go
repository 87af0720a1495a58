package codes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
)

// PDCrossing holds the four arc labels (i, j, k, l) of a planar diagram crossing,
// counter-clockwise starting from the incoming under arc i.
type PDCrossing [4]int32

// Sign returns +1 for a positive (left-handed) crossing and -1 otherwise.
func (X PDCrossing) Sign() Sign {
	j, l := X[1], X[3]
	if j-l == 1 || l-j > 1 {
		return +1
	}
	return -1
}

// UnderArc returns the incoming under arc.
func (X PDCrossing) UnderArc() int32 {
	return X[0]
}

// OverArc returns the incoming over arc, which depends on the crossing sign.
func (X PDCrossing) OverArc() int32 {
	if X.Sign() == +1 {
		return X[3]
	}
	return X[1]
}

func (X PDCrossing) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", X[0], X[1], X[2], X[3])
}

// PDCode is a planar diagram code.
type PDCode struct {
	Crossings []PDCrossing
}

func (PD PDCode) Writhe() int {
	sum := 0
	for _, X := range PD.Crossings {
		sum += int(X.Sign())
	}
	return sum
}

// Validate checks that every arc label appears exactly twice.
func (PD PDCode) Validate() error {
	count := make(map[int32]int)
	for _, X := range PD.Crossings {
		for _, arc := range X {
			count[arc]++
		}
	}
	for arc, n := range count {
		if n != 2 {
			return errors.Wrapf(goknots.ErrBadPDCode, "arc %d appears %d times", arc, n)
		}
	}
	return nil
}

// Shadow returns the arc-following map of the diagram: for each incoming arc, the outgoing arc.
func (PD PDCode) Shadow() map[int32]int32 {
	paths := make(map[int32]int32, 2*len(PD.Crossings))
	for _, X := range PD.Crossings {
		i, j, k, l := X[0], X[1], X[2], X[3]
		paths[i] = k
		if X.Sign() == +1 {
			paths[l] = j
		} else {
			paths[j] = l
		}
	}
	return paths
}

// ShadowComponents traces the shadow into cyclic sequences of arcs, each starting at its least unvisited arc.
func (PD PDCode) ShadowComponents() [][]int32 {
	paths := PD.Shadow()
	arcs := make([]int32, 0, len(paths))
	for arc := range paths {
		arcs = append(arcs, arc)
	}
	sort.Slice(arcs, func(a, b int) bool { return arcs[a] < arcs[b] })

	visited := make(map[int32]bool, len(arcs))
	var comps [][]int32
	for _, start := range arcs {
		if visited[start] {
			continue
		}
		var comp []int32
		for arc, ok := start, true; ok && !visited[arc]; arc, ok = paths[arc] {
			visited[arc] = true
			comp = append(comp, arc)
		}
		comps = append(comps, comp)
	}
	return comps
}

// ToSGCode converts PD into a signed Gauss code, numbering crossings 1..n in PD order.
//
// Each arc is followed by exactly one crossing pass: the under pass of the crossing whose
// incoming under arc it is, or the over pass of the crossing whose incoming over arc it is.
func (PD PDCode) ToSGCode() (SGCode, error) {
	if err := PD.Validate(); err != nil {
		return SGCode{}, err
	}

	passAfter := make(map[int32]Occurrence, 2*len(PD.Crossings))
	for n, X := range PD.Crossings {
		id := CrossingID(n + 1)
		hand := X.Sign()
		for _, pass := range [2]struct {
			arc  int32
			pass Sign
		}{{X.UnderArc(), Under}, {X.OverArc(), Over}} {
			if _, dupe := passAfter[pass.arc]; dupe {
				return SGCode{}, errors.Wrapf(goknots.ErrBadPDCode, "arc %d enters more than one crossing", pass.arc)
			}
			passAfter[pass.arc] = Occurrence{ID: id, Pass: pass.pass, Hand: hand}
		}
	}

	shadow := PD.ShadowComponents()
	D := SGCode{
		Components: make([][]Occurrence, 0, len(shadow)),
	}
	for _, arcs := range shadow {
		comp := make([]Occurrence, 0, len(arcs))
		for _, arc := range arcs {
			occ, ok := passAfter[arc]
			if !ok {
				return SGCode{}, errors.Wrapf(goknots.ErrBadPDCode, "arc %d does not enter a crossing", arc)
			}
			comp = append(comp, occ)
		}
		D.Components = append(D.Components, comp)
	}

	if err := D.Validate(); err != nil {
		return SGCode{}, errors.Wrap(goknots.ErrBadPDCode, err.Error())
	}
	return D, nil
}

func (PD PDCode) String() string {
	parts := make([]string, len(PD.Crossings))
	for i, X := range PD.Crossings {
		parts[i] = X.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
