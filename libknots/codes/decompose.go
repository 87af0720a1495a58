package codes

import (
	"sort"

	"github.com/2x3systems/goknots/goknots"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/pkg/errors"
)

// crossingComps maps each crossing to the components of its over and under occurrence.
func (D SGCode) crossingComps() map[CrossingID][2]int {
	comps := make(map[CrossingID][2]int)
	for ci, comp := range D.Components {
		for _, occ := range comp {
			pair := comps[occ.ID]
			if occ.Pass == Over {
				pair[0] = ci
			} else {
				pair[1] = ci
			}
			comps[occ.ID] = pair
		}
	}
	return comps
}

// ConnectedComponents groups component indices that are joined through shared crossings.
//
// Groups are ordered by their least index and each group is sorted.
func (D SGCode) ConnectedComponents() [][]int {
	N := len(D.Components)
	adj := make([][]int, N)
	for _, pair := range D.crossingComps() {
		if pair[0] != pair[1] {
			adj[pair[0]] = append(adj[pair[0]], pair[1])
			adj[pair[1]] = append(adj[pair[1]], pair[0])
		}
	}

	visited := make([]bool, N)
	var groups [][]int
	queue := linkedlistqueue.New()

	for start := 0; start < N; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		group := []int{start}
		queue.Enqueue(start)

		for !queue.Empty() {
			v, _ := queue.Dequeue()
			for _, w := range adj[v.(int)] {
				if !visited[w] {
					visited[w] = true
					group = append(group, w)
					queue.Enqueue(w)
				}
			}
		}
		sort.Ints(group)
		groups = append(groups, group)
	}
	return groups
}

// Overlies returns the edges i -> j where component i passes over component j at some crossing (i != j).
func (D SGCode) Overlies() [][]int {
	N := len(D.Components)
	seen := make([]map[int]bool, N)
	edges := make([][]int, N)
	for _, pair := range D.crossingComps() {
		from, to := pair[0], pair[1]
		if from == to {
			continue
		}
		if seen[from] == nil {
			seen[from] = make(map[int]bool)
		}
		if !seen[from][to] {
			seen[from][to] = true
			edges[from] = append(edges[from], to)
		}
	}
	for _, e := range edges {
		sort.Ints(e)
	}
	return edges
}

// OverliesDecomposition splits the components into independently evaluable groups.
//
// Every component that nothing passes over (a root of the overlies graph) lies on top of
// the rest of the diagram and forms a singleton group; all remaining components form one
// trailing group.
func (D SGCode) OverliesDecomposition() ([][]int, error) {
	N := len(D.Components)
	inDegree := make([]int, N)
	for _, targets := range D.Overlies() {
		for _, j := range targets {
			inDegree[j]++
		}
	}

	var groups [][]int
	var residual []int
	for ci := 0; ci < N; ci++ {
		if inDegree[ci] == 0 {
			groups = append(groups, []int{ci})
		} else {
			residual = append(residual, ci)
		}
	}
	if len(residual) > 0 {
		groups = append(groups, residual)
	}

	// groups must partition 0..N-1
	count := make([]int, N)
	for _, group := range groups {
		for _, ci := range group {
			count[ci]++
		}
	}
	for ci, n := range count {
		if n != 1 {
			return nil, errors.Wrapf(goknots.ErrBadPartition, "component %d appears in %d groups", ci, n)
		}
	}
	return groups, nil
}

// Sublink restricts D to the given components (in the given order), keeping only the
// crossings with both occurrences inside the restriction.
func (D SGCode) Sublink(indices []int) SGCode {
	inGroup := make(map[int]bool, len(indices))
	for _, ci := range indices {
		inGroup[ci] = true
	}
	comps := D.crossingComps()

	out := SGCode{
		Components: make([][]Occurrence, 0, len(indices)),
	}
	for _, ci := range indices {
		src := D.Components[ci]
		dst := make([]Occurrence, 0, len(src))
		for _, occ := range src {
			pair := comps[occ.ID]
			if inGroup[pair[0]] && inGroup[pair[1]] {
				dst = append(dst, occ)
			}
		}
		out.Components = append(out.Components, dst)
	}
	return out
}

// FirstViolation returns the first crossing (in diagram order) whose first occurrence is an under pass.
// ok is false when D is in standard unknot form.
func (D SGCode) FirstViolation() (id CrossingID, ok bool) {
	seen := make(map[CrossingID]bool)
	for _, comp := range D.Components {
		for _, occ := range comp {
			if seen[occ.ID] {
				continue
			}
			seen[occ.ID] = true
			if occ.Pass == Under {
				return occ.ID, true
			}
		}
	}
	return 0, false
}

// SwitchingSequence returns every crossing first met as an under pass, in diagram order.
// Switching all of them puts D in standard unknot form.
func (D SGCode) SwitchingSequence() []CrossingID {
	var ids []CrossingID
	seen := make(map[CrossingID]bool)
	for _, comp := range D.Components {
		for _, occ := range comp {
			if !seen[occ.ID] {
				seen[occ.ID] = true
				if occ.Pass == Under {
					ids = append(ids, occ.ID)
				}
			}
		}
	}
	return ids
}

// ToStdUnknot returns D with its switching sequence applied.
func (D SGCode) ToStdUnknot() (SGCode, error) {
	return D.ApplySwitches(D.SwitchingSequence())
}
