package codes

// SwitchCrossing exchanges over and under at both occurrences of id.
//
// Since the handedness of an occurrence is the sign of its crossing, it is inverted along with the pass.
func (D SGCode) SwitchCrossing(id CrossingID) (SGCode, error) {
	under, over, err := D.Locate(id)
	if err != nil {
		return SGCode{}, err
	}
	out := D.Clone()
	for _, p := range [2]Pos{under, over} {
		out.Components[p.Comp][p.Index] = out.Components[p.Comp][p.Index].Switch()
	}
	return out, nil
}

// ApplySwitches switches each of the given crossings in turn.
func (D SGCode) ApplySwitches(ids []CrossingID) (SGCode, error) {
	var err error
	for _, id := range ids {
		if D, err = D.SwitchCrossing(id); err != nil {
			return SGCode{}, err
		}
	}
	return D, nil
}

// SpliceH returns the horizontal smoothing of the given crossing.
func (D SGCode) SpliceH(id CrossingID) (SGCode, error) {
	return D.splice(id, +1)
}

// SpliceV returns the vertical smoothing of the given crossing.
func (D SGCode) SpliceV(id CrossingID) (SGCode, error) {
	return D.splice(id, -1)
}

// splice removes crossing id and reconnects its four strand ends.
//
// When hand*orth is positive the strands reconnect preserving orientation: a component crossing
// itself splits in two and two distinct components merge into one. Otherwise the pieces are joined
// with a reversed segment, and every crossing with exactly one occurrence inside it changes sign.
func (D SGCode) splice(id CrossingID, orth Sign) (SGCode, error) {
	under, over, err := D.Locate(id)
	if err != nil {
		return SGCode{}, err
	}
	hand := D.Components[over.Comp][over.Index].Hand
	keepOrientation := hand*orth == +1

	others := make([][]Occurrence, 0, len(D.Components))
	for ci, comp := range D.Components {
		if ci != under.Comp && ci != over.Comp {
			others = append(others, comp)
		}
	}

	out := SGCode{
		Components: make([][]Occurrence, 0, len(D.Components)+1),
	}

	if under.Comp == over.Comp {
		comp := D.Components[under.Comp]
		first, second := under.Index, over.Index
		if first > second {
			first, second = second, first
		}
		l1 := comp[:first]
		l2 := comp[first+1 : second]
		l3 := comp[second+1:]

		if keepOrientation {
			out.Components = append(out.Components, cloneComponents(others)...)
			out.Components = append(out.Components, concat(l1, l3), concat(l2))
			return out, nil
		}

		flips := halfInside(l2)
		out.Components = append(out.Components, flipHands(others, flips)...)
		joined := concat(l1, reversed(l2), l3)
		out.Components = append(out.Components, flipHands([][]Occurrence{joined}, flips)...)
		return out, nil
	}

	overComp := D.Components[over.Comp]
	underComp := D.Components[under.Comp]
	l1 := overComp[:over.Index]
	l2 := overComp[over.Index+1:]
	m1 := underComp[:under.Index]
	m2 := underComp[under.Index+1:]

	if keepOrientation {
		out.Components = append(out.Components, cloneComponents(others)...)
		out.Components = append(out.Components, concat(l1, m2, m1, l2))
		return out, nil
	}

	flips := halfInside(m1, m2)
	out.Components = append(out.Components, flipHands(others, flips)...)
	joined := concat(l1, reversed(m1), reversed(m2), l2)
	out.Components = append(out.Components, flipHands([][]Occurrence{joined}, flips)...)
	return out, nil
}

// Reverse reverses the orientation of the given components.
// A crossing with exactly one occurrence in the reversed set changes sign.
func (D SGCode) Reverse(indices ...int) SGCode {
	rev := make([]bool, len(D.Components))
	for _, ci := range indices {
		rev[ci] = true
	}

	var segs [][]Occurrence
	for ci, comp := range D.Components {
		if rev[ci] {
			segs = append(segs, comp)
		}
	}
	flips := halfInside(segs...)

	out := SGCode{
		Components: make([][]Occurrence, len(D.Components)),
	}
	for ci, comp := range D.Components {
		if rev[ci] {
			comp = reversed(comp)
		}
		out.Components[ci] = flipHands([][]Occurrence{comp}, flips)[0]
	}
	return out
}

// ReverseAll reverses every component; no crossing changes sign.
func (D SGCode) ReverseAll() SGCode {
	out := SGCode{
		Components: make([][]Occurrence, len(D.Components)),
	}
	for ci, comp := range D.Components {
		out.Components[ci] = reversed(comp)
	}
	return out
}

// Mirror reverses every component and switches every crossing.
//
// Reversing all components leaves each crossing sign intact while switching inverts it,
// so the handedness of every crossing of the mirror image is negated.
func (D SGCode) Mirror() SGCode {
	out := D.ReverseAll()
	for _, comp := range out.Components {
		for i := range comp {
			comp[i] = comp[i].Switch()
		}
	}
	return out
}

// Relabel renumbers crossings 1..n in order of first occurrence.
func (D SGCode) Relabel() SGCode {
	ids := make(map[CrossingID]CrossingID)
	out := D.Clone()
	for _, comp := range out.Components {
		for i, occ := range comp {
			newID, ok := ids[occ.ID]
			if !ok {
				newID = CrossingID(len(ids) + 1)
				ids[occ.ID] = newID
			}
			comp[i].ID = newID
		}
	}
	return out
}

// ToMinimal rotates each component to start at its lexicographically least rotation.
func (D SGCode) ToMinimal() SGCode {
	out := SGCode{
		Components: make([][]Occurrence, len(D.Components)),
	}
	for ci, comp := range D.Components {
		start := minimalRotation(comp)
		out.Components[ci] = concat(comp[start:], comp[:start])
	}
	return out
}

// Canonical returns the form of D used to key memoized results.
func (D SGCode) Canonical() SGCode {
	return D.ToMinimal().Relabel()
}

func minimalRotation(comp []Occurrence) int {
	n := len(comp)
	best := 0
	for start := 1; start < n; start++ {
		for k := 0; k < n; k++ {
			c := comp[(start+k)%n].compare(comp[(best+k)%n])
			if c < 0 {
				best = start
			}
			if c != 0 {
				break
			}
		}
	}
	return best
}

// halfInside returns the crossings with exactly one occurrence among the given segments.
func halfInside(segs ...[]Occurrence) map[CrossingID]bool {
	count := make(map[CrossingID]int)
	for _, seg := range segs {
		for _, occ := range seg {
			count[occ.ID]++
		}
	}
	flips := make(map[CrossingID]bool, len(count))
	for id, n := range count {
		if n == 1 {
			flips[id] = true
		}
	}
	return flips
}

// flipHands returns copies of comps with the given crossings' handedness inverted.
func flipHands(comps [][]Occurrence, flips map[CrossingID]bool) [][]Occurrence {
	out := make([][]Occurrence, len(comps))
	for ci, comp := range comps {
		dst := make([]Occurrence, len(comp))
		for i, occ := range comp {
			if flips[occ.ID] {
				occ = occ.FlipHand()
			}
			dst[i] = occ
		}
		out[ci] = dst
	}
	return out
}

func cloneComponents(comps [][]Occurrence) [][]Occurrence {
	return flipHands(comps, nil)
}

func concat(segs ...[]Occurrence) []Occurrence {
	n := 0
	for _, seg := range segs {
		n += len(seg)
	}
	out := make([]Occurrence, 0, n)
	for _, seg := range segs {
		out = append(out, seg...)
	}
	return out
}

func reversed(seg []Occurrence) []Occurrence {
	out := make([]Occurrence, len(seg))
	for i, occ := range seg {
		out[len(seg)-1-i] = occ
	}
	return out
}
