package codes

import (
	"math"
	"strings"

	"github.com/2x3systems/goknots/goknots"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// SGCode is a signed Gauss code: an ordered list of components, each a cyclic sequence of crossing occurrences.
//
// An SGCode is treated as an immutable value; every operation returns a new code.
// An empty component is a crossing-free unknot.
type SGCode struct {
	Components [][]Occurrence
}

// Pos locates an occurrence within an SGCode.
type Pos struct {
	Comp  int
	Index int
}

// FromTuples builds an SGCode from per-component (signed id, handedness) pairs,
// where a positive id is an over pass and a negative id an under pass.
func FromTuples(comps [][][2]int) (SGCode, error) {
	D := SGCode{
		Components: make([][]Occurrence, len(comps)),
	}
	for ci, comp := range comps {
		D.Components[ci] = make([]Occurrence, len(comp))
		for i, tuple := range comp {
			id, hand := tuple[0], Sign(tuple[1])
			if id == 0 || id > math.MaxInt32 || id < -math.MaxInt32 || !hand.Valid() {
				return SGCode{}, errors.Wrapf(goknots.ErrMalformedCode, "bad tuple %v in component %d", tuple, ci)
			}
			occ := Occurrence{Pass: Over, Hand: hand}
			if id < 0 {
				occ.Pass = Under
				id = -id
			}
			occ.ID = CrossingID(id)
			D.Components[ci][i] = occ
		}
	}
	return D, nil
}

// MustFromTuples is FromTuples for known-good literals.
func MustFromTuples(comps [][][2]int) SGCode {
	D, err := FromTuples(comps)
	if err != nil {
		panic(err)
	}
	return D
}

// Tuples is the inverse of FromTuples.
func (D SGCode) Tuples() [][][2]int {
	out := make([][][2]int, len(D.Components))
	for ci, comp := range D.Components {
		out[ci] = make([][2]int, len(comp))
		for i, occ := range comp {
			out[ci][i] = occ.Tuple()
		}
	}
	return out
}

func (D SGCode) NumComponents() int {
	return len(D.Components)
}

// NumCrossings returns the number of crossings, assuming D is valid.
func (D SGCode) NumCrossings() int {
	n := 0
	for _, comp := range D.Components {
		n += len(comp)
	}
	return n / 2
}

// Writhe returns the sum of crossing signs.
func (D SGCode) Writhe() int {
	sum := 0
	for _, comp := range D.Components {
		for _, occ := range comp {
			sum += int(occ.Hand)
		}
	}
	return sum / 2
}

type crossingTally struct {
	over, under int
	hand        Sign
	comp        int // component of the first occurrence seen
}

// Validate checks that every crossing appears exactly twice (once over, once under) with one handedness.
func (D SGCode) Validate() error {
	if len(D.Components) == 0 {
		return goknots.ErrEmptyLink
	}

	tally := make(map[CrossingID]*crossingTally)
	for ci, comp := range D.Components {
		for i, occ := range comp {
			if occ.ID <= 0 || !occ.Pass.Valid() || !occ.Hand.Valid() {
				return errors.Wrapf(goknots.ErrMalformedCode, "bad occurrence %v at component %d index %d", occ, ci, i)
			}
			t := tally[occ.ID]
			if t == nil {
				t = &crossingTally{hand: occ.Hand, comp: ci}
				tally[occ.ID] = t
			} else if t.hand != occ.Hand {
				return errors.Wrapf(goknots.ErrMalformedCode, "crossing %d has mismatched handedness", occ.ID)
			}
			if occ.Pass == Over {
				t.over++
			} else {
				t.under++
			}
			if t.over > 1 || t.under > 1 {
				return errors.Wrapf(goknots.ErrMalformedCode, "crossing %d occurs more than once as %v", occ.ID, passName(occ.Pass))
			}
		}
	}

	for id, t := range tally {
		if t.over != 1 || t.under != 1 {
			return errors.Wrapf(goknots.ErrMissingCrossing, "crossing %d occurs only once (component %d)", id, t.comp)
		}
	}
	return nil
}

func passName(pass Sign) string {
	if pass == Over {
		return "over"
	}
	return "under"
}

// Locate returns the positions of the under and over occurrences of the given crossing.
func (D SGCode) Locate(id CrossingID) (under, over Pos, err error) {
	found := 0
	for ci, comp := range D.Components {
		for i, occ := range comp {
			if occ.ID != id {
				continue
			}
			if occ.Pass == Over {
				over = Pos{ci, i}
			} else {
				under = Pos{ci, i}
			}
			found++
		}
	}
	if found != 2 {
		err = errors.Wrapf(goknots.ErrMissingCrossing, "crossing %d", id)
	}
	return
}

// Handedness returns the sign of the given crossing.
func (D SGCode) Handedness(id CrossingID) (Sign, bool) {
	for _, comp := range D.Components {
		for _, occ := range comp {
			if occ.ID == id {
				return occ.Hand, true
			}
		}
	}
	return 0, false
}

// Clone returns a deep copy of D.
func (D SGCode) Clone() SGCode {
	out := SGCode{
		Components: make([][]Occurrence, len(D.Components)),
	}
	for ci, comp := range D.Components {
		out.Components[ci] = append(make([]Occurrence, 0, len(comp)), comp...)
	}
	return out
}

func (D SGCode) Equal(B SGCode) bool {
	if len(D.Components) != len(B.Components) {
		return false
	}
	for ci, comp := range D.Components {
		if len(comp) != len(B.Components[ci]) {
			return false
		}
		for i, occ := range comp {
			if occ != B.Components[ci][i] {
				return false
			}
		}
	}
	return true
}

// AppendKey appends a compact encoding of D (as given, no normalization) to buf.
func (D SGCode) AppendKey(buf []byte) []byte {
	enc := proto.NewBuffer(buf)
	enc.EncodeVarint(uint64(len(D.Components)))
	for _, comp := range D.Components {
		enc.EncodeVarint(uint64(len(comp)))
		for _, occ := range comp {
			signed := int64(occ.ID) * int64(occ.Pass)
			enc.EncodeZigzag64(uint64(signed))
			enc.EncodeVarint(uint64(occ.Hand + 1))
		}
	}
	return enc.Bytes()
}

// Key returns the memoization key of D: the encoding of its canonical form.
func (D SGCode) Key() []byte {
	return D.Canonical().AppendKey(make([]byte, 0, 8+3*2*D.NumCrossings()))
}

// String formats D in the tuple syntax read by ParseSGCode, e.g. "[[(1,-1),(-1,-1)],[]]".
func (D SGCode) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for ci, comp := range D.Components {
		if ci > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for i, occ := range comp {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(occ.String())
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}
