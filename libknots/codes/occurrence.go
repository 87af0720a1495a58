package codes

import "fmt"

// Sign is a ±1 value used for both the pass (over/under) and the handedness of a crossing occurrence.
type Sign int8

const (
	Over  Sign = +1
	Under Sign = -1

	// Left is the positive (left-handed) crossing.
	Left  Sign = +1
	Right Sign = -1
)

func (s Sign) Valid() bool {
	return s == +1 || s == -1
}

// CrossingID names a crossing; both of its occurrences carry the same ID (always > 0).
type CrossingID int32

// Occurrence is a single pass of a strand through a crossing.
type Occurrence struct {
	ID   CrossingID
	Pass Sign // Over or Under
	Hand Sign // Left or Right, shared by both occurrences of ID
}

func (o Occurrence) IsOver() bool {
	return o.Pass == Over
}

// Opposite returns the other pass of the same crossing.
func (o Occurrence) Opposite() Occurrence {
	return Occurrence{o.ID, -o.Pass, o.Hand}
}

// Switch exchanges over and under, which inverts the crossing's sign.
func (o Occurrence) Switch() Occurrence {
	return Occurrence{o.ID, -o.Pass, -o.Hand}
}

func (o Occurrence) FlipHand() Occurrence {
	return Occurrence{o.ID, o.Pass, -o.Hand}
}

// Tuple returns the (signed id, handedness) form read by FromTuples.
func (o Occurrence) Tuple() [2]int {
	return [2]int{int(o.ID) * int(o.Pass), int(o.Hand)}
}

// compare orders occurrences by ID, then over before under, then left before right.
func (o Occurrence) compare(b Occurrence) int {
	switch {
	case o.ID != b.ID:
		if o.ID < b.ID {
			return -1
		}
		return 1
	case o.Pass != b.Pass:
		if o.Pass > b.Pass {
			return -1
		}
		return 1
	case o.Hand != b.Hand:
		if o.Hand > b.Hand {
			return -1
		}
		return 1
	}
	return 0
}

func (o Occurrence) String() string {
	t := o.Tuple()
	return fmt.Sprintf("(%d,%d)", t[0], t[1])
}
