package skein

import (
	"math/big"
	"sync/atomic"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/codes"
	"github.com/2x3systems/goknots/libknots/poly"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Evaluator computes one invariant family through memoized skein recursion.
//
// An Evaluator is safe for concurrent use; all state shared between evaluations lives in its Cache.
type Evaluator struct {
	rule          Rule
	cache         Cache
	parallelDepth int
	symmetrize    bool
	flight        singleflight.Group

	evaluations atomic.Int64
	cacheHits   atomic.Int64
	skeinSteps  atomic.Int64
	factorings  atomic.Int64
}

// Option configures an Evaluator.
type Option func(ev *Evaluator)

// WithCache shares the given Cache (e.g. a persistent catalog) instead of a private MemoCache.
func WithCache(cache Cache) Option {
	return func(ev *Evaluator) {
		ev.cache = cache
	}
}

// WithParallel evaluates independent legs and groups in separate goroutines for the top depth levels of the recursion.
func WithParallel(depth int) Option {
	return func(ev *Evaluator) {
		ev.parallelDepth = depth
	}
}

// WithSymmetrize averages each linked multi-component reduction over the reversals of its components:
//
//	(N*step(D) + step(D reversed at 1) + ... + step(D reversed at N)) / 2N
//
// Each reversed diagram is reduced as a whole rather than split component by component, and the
// reversed legs are evaluated without further averaging.  This is an experimental reduction, off by
// default, and has no effect on families whose value depends on orientation.
func WithSymmetrize() Option {
	return func(ev *Evaluator) {
		ev.symmetrize = true
	}
}

// NewEvaluator returns an Evaluator for the given rule.
func NewEvaluator(rule Rule, opts ...Option) (*Evaluator, error) {
	if rule.Disjoint == nil {
		return nil, errors.Wrapf(goknots.ErrNoDisjointFactor, "family %v", rule.Family)
	}
	if rule.Unknot == nil || rule.Skein == nil {
		return nil, errors.Errorf("family %v: incomplete rule", rule.Family)
	}

	ev := &Evaluator{
		rule: rule,
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.cache == nil {
		ev.cache = NewMemoCache(0)
	}
	if !rule.Unoriented {
		ev.symmetrize = false
	}
	return ev, nil
}

func (ev *Evaluator) Rule() Rule {
	return ev.rule
}

func (ev *Evaluator) Stats() goknots.Stats {
	return goknots.Stats{
		Evaluations: ev.evaluations.Load(),
		CacheHits:   ev.cacheHits.Load(),
		SkeinSteps:  ev.skeinSteps.Load(),
		Factorings:  ev.factorings.Load(),
	}
}

func (ev *Evaluator) key(D codes.SGCode) []byte {
	return D.Canonical().AppendKey([]byte{byte(ev.rule.Family)})
}

// Evaluate returns the invariant of D.
//
// D must be a valid code with at least one component.  Concurrent calls for the same diagram
// are computed once.
func (ev *Evaluator) Evaluate(D codes.SGCode) (poly.Poly, error) {
	if err := D.Validate(); err != nil {
		return poly.Poly{}, err
	}

	key := ev.key(D)
	val, err, _ := ev.flight.Do(string(key), func() (interface{}, error) {
		return ev.memo(D, key, 0, ev.symmetrize)
	})
	if err != nil {
		return poly.Poly{}, err
	}
	return val.(poly.Poly), nil
}

// memo evaluates D through the cache.  sym permits a symmetrized reduction; it is cleared below
// the first one so that reversals never feed back into the recursion.
func (ev *Evaluator) memo(D codes.SGCode, key []byte, depth int, sym bool) (poly.Poly, error) {
	ev.evaluations.Add(1)
	if P, ok := ev.cache.Load(key); ok {
		ev.cacheHits.Add(1)
		return P, nil
	}

	P, err := ev.eval(D, depth, sym)
	if err != nil {
		return poly.Poly{}, err
	}
	ev.cache.Store(key, P)
	return P, nil
}

func (ev *Evaluator) eval(D codes.SGCode, depth int, sym bool) (poly.Poly, error) {
	if len(D.Components) == 0 {
		return poly.Poly{}, goknots.ErrEmptyLink
	}
	klog.V(4).Infof("%*s%v %v", 2*depth, "", ev.rule.Family, D)

	groups, err := D.OverliesDecomposition()
	if err != nil {
		return poly.Poly{}, err
	}

	if len(groups) > 1 {
		ev.factorings.Add(1)
		sublinks := make([]codes.SGCode, len(groups))
		for i, group := range groups {
			sublinks[i] = D.Sublink(group)
		}
		values, err := ev.evalAll(sublinks, depth, sym)
		if err != nil {
			return poly.Poly{}, err
		}

		P := ev.rule.Disjoint.MustPow(len(groups) - 1)
		for _, Pi := range values {
			P = P.Mul(Pi)
		}
		return P, nil
	}

	if _, violated := D.FirstViolation(); !violated {
		return ev.rule.Unknot(D), nil
	}

	N := len(D.Components)
	if !sym || N == 1 {
		return ev.skein(D, depth, sym)
	}

	// sum over i of step(D) + step(D reversed at i), averaged over 2N terms
	diagrams := make([]codes.SGCode, N+1)
	diagrams[0] = D
	for i := 0; i < N; i++ {
		diagrams[i+1] = D.Reverse(i)
	}
	values, err := ev.each(diagrams, depth, func(D codes.SGCode, depth int) (poly.Poly, error) {
		return ev.skein(D, depth, false)
	})
	if err != nil {
		return poly.Poly{}, err
	}
	sum := values[0].ScaleRat(big.NewRat(int64(N), 1))
	for _, Pi := range values[1:] {
		sum = sum.Add(Pi)
	}
	return sum.ScaleRat(big.NewRat(1, int64(2*N))), nil
}

// skein applies the family's skein identity at the first crossing violating standard unknot form.
func (ev *Evaluator) skein(D codes.SGCode, depth int, sym bool) (poly.Poly, error) {
	id, violated := D.FirstViolation()
	if !violated {
		return ev.rule.Unknot(D), nil
	}
	ev.skeinSteps.Add(1)

	step, err := ev.rule.Skein(D, id)
	if err != nil {
		return poly.Poly{}, err
	}
	legs, err := ev.evalAll(step.Legs, depth, sym)
	if err != nil {
		return poly.Poly{}, errors.Wrapf(err, "reducing crossing %d", id)
	}
	return step.Combine(legs), nil
}

func (ev *Evaluator) evalAll(diagrams []codes.SGCode, depth int, sym bool) ([]poly.Poly, error) {
	return ev.each(diagrams, depth, func(D codes.SGCode, depth int) (poly.Poly, error) {
		return ev.memo(D, ev.key(D), depth+1, sym)
	})
}

// each applies fn to each diagram, concurrently while depth is within the parallel depth.
func (ev *Evaluator) each(
	diagrams []codes.SGCode,
	depth int,
	fn func(D codes.SGCode, depth int) (poly.Poly, error),
) ([]poly.Poly, error) {
	out := make([]poly.Poly, len(diagrams))

	if depth >= ev.parallelDepth || len(diagrams) < 2 {
		for i, D := range diagrams {
			P, err := fn(D, depth)
			if err != nil {
				return nil, err
			}
			out[i] = P
		}
		return out, nil
	}

	var group errgroup.Group
	for i, D := range diagrams {
		i, D := i, D
		group.Go(func() error {
			P, err := fn(D, depth)
			out[i] = P
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
