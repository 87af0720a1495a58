package batch

import (
	"context"
	"runtime"
	"time"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/codes"
	"github.com/2x3systems/goknots/libknots/poly"
	"github.com/2x3systems/goknots/libknots/skein"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// Job is one diagram to evaluate.
type Job struct {
	Name     string
	Diagram  string         // PD or signed Gauss code text
	Family   goknots.Family // zero means the Runner's default family
	Expected string         // optional reference polynomial
}

// Result is the outcome of one Job, reported at the Job's input index.
type Result struct {
	Job      Job
	Family   goknots.Family
	Value    poly.Poly
	Err      error
	Checked  bool // Expected was given and parsed
	Matches  bool // Checked and Value equals Expected
	Duration time.Duration
}

func (r *Result) OK() bool {
	return r.Err == nil && (!r.Checked || r.Matches)
}

// Opts configures a Runner.
type Opts struct {
	Workers       int            // defaults to GOMAXPROCS
	Family        goknots.Family // defaults to Family_Homfly
	Cache         skein.Cache    // shared by all families; defaults to a private MemoCache
	ParallelDepth int
}

// Runner evaluates jobs over a pool of workers that share one cache.
type Runner struct {
	opts       Opts
	evaluators map[goknots.Family]*skein.Evaluator
}

func NewRunner(opts Opts) (*Runner, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Family == 0 {
		opts.Family = goknots.Family_Homfly
	}
	if opts.Cache == nil {
		opts.Cache = skein.NewMemoCache(0)
	}

	runner := &Runner{
		opts:       opts,
		evaluators: make(map[goknots.Family]*skein.Evaluator),
	}
	for _, rule := range []skein.Rule{skein.Kauffman(), skein.Homfly()} {
		ev, err := skein.NewEvaluator(rule,
			skein.WithCache(opts.Cache),
			skein.WithParallel(opts.ParallelDepth),
		)
		if err != nil {
			return nil, err
		}
		runner.evaluators[rule.Family] = ev
	}
	runner.evaluators[goknots.Family_FPoly] = runner.evaluators[goknots.Family_Kauffman]
	return runner, nil
}

// Stats sums the activity of the Runner's evaluators.
func (runner *Runner) Stats() goknots.Stats {
	var total goknots.Stats
	for family, ev := range runner.evaluators {
		if family == goknots.Family_FPoly {
			continue
		}
		s := ev.Stats()
		total.Evaluations += s.Evaluations
		total.CacheHits += s.CacheHits
		total.SkeinSteps += s.SkeinSteps
		total.Factorings += s.Factorings
	}
	return total
}

// Run evaluates every job and returns results in input order.  A failed job records its error in its
// Result and does not stop the others; only cancellation of ctx ends the run early.
func (runner *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runner.opts.Workers)

	for i := range jobs {
		if groupCtx.Err() != nil {
			break
		}
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = runner.runJob(jobs[i])
			klog.V(2).Infof("job %d %q: %v (%v)", i, jobs[i].Name, results[i].Err, results[i].Duration)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (runner *Runner) runJob(job Job) (res Result) {
	res = Result{
		Job:    job,
		Family: job.Family,
	}
	if res.Family == 0 {
		res.Family = runner.opts.Family
	}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
	}()

	ev := runner.evaluators[res.Family]
	if ev == nil {
		res.Err = errors.Errorf("unknown invariant family %q", byte(res.Family))
		return res
	}

	D, err := codes.ParseDiagram(job.Diagram)
	if err != nil {
		res.Err = err
		return res
	}
	res.Value, res.Err = skein.Compute(ev, res.Family, D)
	if res.Err != nil || job.Expected == "" {
		return res
	}

	want, err := poly.Parse(job.Expected, ev.Rule().Vars)
	if err != nil {
		res.Err = errors.Wrap(err, "expected value")
		return res
	}
	res.Checked = true
	res.Matches = want.Equal(res.Value)
	return res
}
