package main

import (
	"fmt"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/codes"
	"github.com/2x3systems/goknots/libknots/skein"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type codeKind int

const (
	codeAny codeKind = iota
	codePD
	codeSG
)

type codeInput struct {
	kind codeKind
	text string
}

// codesValue appends to a list shared by several flags so that inputs keep their command line order.
type codesValue struct {
	kind   codeKind
	inputs *[]codeInput
}

func (v codesValue) String() string {
	return ""
}

func (v codesValue) Set(text string) error {
	*v.inputs = append(*v.inputs, codeInput{v.kind, text})
	return nil
}

func (v codesValue) Type() string {
	return "code"
}

func (s codeInput) diagram() (codes.SGCode, error) {
	switch s.kind {
	case codePD:
		PD, err := codes.ParsePD(s.text)
		if err != nil {
			return codes.SGCode{}, err
		}
		return PD.ToSGCode()
	case codeSG:
		return codes.ParseSGCode(s.text)
	}
	return codes.ParseDiagram(s.text)
}

type evalFlags struct {
	cacheFlags
	family     string
	inputs     []codeInput
	symmetrize bool
	parallel   int
	stats      bool
}

func newEvalCmd() *cobra.Command {
	ef := &evalFlags{}

	cmd := &cobra.Command{
		Use:   "eval [code...]",
		Short: "Evaluate a polynomial of each given diagram, one result per line",
		Example: `  goknots eval -p P --pd '[[3,6,4,1],[5,2,6,3],[1,4,2,5]]'
  goknots eval -p L --sg '[[(+1, -1), (-2, -1)], [(-1, -1), (+2, -1)]]'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				ef.inputs = append(ef.inputs, codeInput{codeAny, arg})
			}
			return ef.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&ef.family, "polynomial", "p", "F", "polynomial to compute (P=HOMFLY, F=Kauffman F, L=Kauffman L)")
	flags.Var(codesValue{codePD, &ef.inputs}, "pd", "PD code, e.g. '[[3,6,4,1],[5,2,6,3],[1,4,2,5]]'")
	flags.Var(codesValue{codeSG, &ef.inputs}, "sg", "signed Gauss code, e.g. '[[(+1, -1), (-2, -1)], [(-1, -1), (+2, -1)]]'")
	flags.BoolVar(&ef.symmetrize, "symmetrize", false, "average Kauffman reductions of linked components over their reversals")
	flags.IntVar(&ef.parallel, "parallel", 0, "recursion depth down to which skein legs evaluate concurrently")
	flags.BoolVar(&ef.stats, "stats", false, "print evaluator counters after the results")
	ef.cacheFlags.register(flags)
	return cmd
}

func (ef *evalFlags) run(cmd *cobra.Command) error {
	if len(ef.inputs) == 0 {
		return errors.New("no input provided")
	}

	family, ok := goknots.ParseFamily(ef.family)
	if !ok {
		return errors.Errorf("unknown polynomial %q", ef.family)
	}
	rule, err := skein.RuleFor(family)
	if err != nil {
		return err
	}

	cache, release, err := ef.open()
	if err != nil {
		return err
	}
	defer release()

	opts := []skein.Option{
		skein.WithCache(cache),
		skein.WithParallel(ef.parallel),
	}
	if ef.symmetrize {
		opts = append(opts, skein.WithSymmetrize())
	}
	ev, err := skein.NewEvaluator(rule, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, s := range ef.inputs {
		D, err := s.diagram()
		if err != nil {
			return errors.Wrapf(err, "processing %q", s.text)
		}
		P, err := skein.Compute(ev, family, D)
		if err != nil {
			return errors.Wrapf(err, "processing %q", s.text)
		}
		fmt.Fprintln(out, P)
	}

	if ef.stats {
		stats := ev.Stats()
		fmt.Fprintf(cmd.ErrOrStderr(), "evaluations: %d  cache hits: %d  skein steps: %d  factorings: %d\n",
			stats.Evaluations, stats.CacheHits, stats.SkeinSteps, stats.Factorings)
	}
	return nil
}
