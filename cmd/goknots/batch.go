package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/batch"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	cacheFlags
	family   string
	workers  int
	parallel int
	skip     int
	count    int
}

func newBatchCmd() *cobra.Command {
	bf := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Evaluate a YAML file of diagrams, checking each against its expected polynomial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return bf.run(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&bf.family, "polynomial", "p", "", "polynomial for jobs naming none (overrides the file's default)")
	flags.IntVar(&bf.workers, "workers", 0, "number of jobs evaluated at once (default GOMAXPROCS)")
	flags.IntVar(&bf.parallel, "parallel", 0, "recursion depth down to which skein legs evaluate concurrently")
	flags.IntVarP(&bf.skip, "skip", "s", 0, "number of jobs to skip")
	flags.IntVarP(&bf.count, "count", "c", 0, "number of jobs to run (0 for all)")
	bf.cacheFlags.register(flags)
	return cmd
}

func (bf *batchFlags) run(cmd *cobra.Command, pathname string) error {
	file, err := os.Open(pathname)
	if err != nil {
		return err
	}
	jobs, family, err := batch.ReadJobs(file)
	file.Close()
	if err != nil {
		return errors.Wrapf(err, "reading %q", pathname)
	}

	if bf.family != "" {
		var ok bool
		if family, ok = goknots.ParseFamily(bf.family); !ok {
			return errors.Errorf("unknown polynomial %q", bf.family)
		}
	}

	total := len(jobs)
	first := min(bf.skip, total)
	jobs = jobs[first:]
	if bf.count > 0 && bf.count < len(jobs) {
		jobs = jobs[:bf.count]
	}

	cache, release, err := bf.open()
	if err != nil {
		return err
	}
	defer release()

	runner, err := batch.NewRunner(batch.Opts{
		Workers:       bf.workers,
		Family:        family,
		Cache:         cache,
		ParallelDepth: bf.parallel,
	})
	if err != nil {
		return err
	}

	results, err := runner.Run(context.Background(), jobs)
	if err != nil {
		return err
	}

	var (
		out      = cmd.OutOrStdout()
		width    = len(strconv.Itoa(total)) + 1
		correct  = color.New(color.FgGreen).Sprint("Correct")
		wrong    = color.New(color.FgRed).Sprint("Wrong")
		failed   = color.New(color.FgRed).Sprint("Error")
		numFails = 0
	)
	for i, res := range results {
		prefix := fmt.Sprintf("%*d/%d > ", width, first+i+1, total)
		fmt.Fprintf(out, "%s%-14s [%.2fs] %v => ", prefix, res.Job.Name, res.Duration.Seconds(), res.Family)
		switch {
		case res.Err != nil:
			numFails++
			fmt.Fprintf(out, "%s: %v\n", failed, res.Err)
		case !res.Checked:
			fmt.Fprintln(out, res.Value)
		case res.Matches:
			fmt.Fprintln(out, correct)
		default:
			numFails++
			fmt.Fprintln(out, wrong)
			pad := fmt.Sprintf("%*s", len(prefix), "")
			fmt.Fprintf(out, "%s> got:      %v\n", pad, res.Value)
			fmt.Fprintf(out, "%s> expected: %v\n", pad, res.Job.Expected)
		}
	}

	stats := runner.Stats()
	fmt.Fprintf(out, "%d jobs, %d failed (evaluations: %d, cache hits: %d, skein steps: %d)\n",
		len(results), numFails, stats.Evaluations, stats.CacheHits, stats.SkeinSteps)
	if numFails > 0 {
		return errors.Errorf("%d of %d jobs failed", numFails, len(results))
	}
	return nil
}
