package batch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/2x3systems/goknots/goknots"
	"github.com/2x3systems/goknots/libknots/batch"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const jobsYAML = `
family: homfly
jobs:
  - name: 3_1
    sg: "[[(1,1),(-2,1),(3,1),(-1,1),(2,1),(-3,1)]]"
    expected: "2*v^2 - v^4 + v^2*z^2"
  - name: 4_1
    pd: "[[4,2,5,1],[8,6,1,5],[6,3,7,4],[2,7,3,8]]"
    expected: "v^-2 - 1 + v^2 - z^2"
  - name: hopf
    sg: "[[(1,-1),(-2,-1)],[(-1,-1),(2,-1)]]"
    family: L
    expected: "(a + a^-1)*z - (a + a^-1)/z + 1"
  - name: 3_1 F
    pd: "[(3,6,4,1),(5,2,6,3),(1,4,2,5)]"
    family: F
    expected: "-2*a^2 - a^4 + (a^3 + a^5)*z"
  - name: broken
    sg: "[[(1,1)]]"
`

func TestReadJobs(t *testing.T) {
	jobs, family, err := batch.ReadJobs(strings.NewReader(jobsYAML))
	require.NoError(t, err)
	require.Equal(t, goknots.Family_Homfly, family)
	require.Len(t, jobs, 5)
	require.Equal(t, goknots.Family(0), jobs[0].Family)
	require.Equal(t, goknots.Family_Kauffman, jobs[2].Family)
	require.Equal(t, goknots.Family_FPoly, jobs[3].Family)
	require.Equal(t, "[[4,2,5,1],[8,6,1,5],[6,3,7,4],[2,7,3,8]]", jobs[1].Diagram)

	_, _, err = batch.ReadJobs(strings.NewReader("jobs:\n  - name: x\n"))
	require.True(t, errors.Is(err, goknots.ErrParse))

	_, _, err = batch.ReadJobs(strings.NewReader("family: q\njobs: []\n"))
	require.True(t, errors.Is(err, goknots.ErrParse))
}

func TestRun(t *testing.T) {
	jobs, family, err := batch.ReadJobs(strings.NewReader(jobsYAML))
	require.NoError(t, err)

	runner, err := batch.NewRunner(batch.Opts{
		Workers: 3,
		Family:  family,
	})
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, res := range results {
		require.Equal(t, jobs[i].Name, res.Job.Name)
	}
	for _, res := range results[:3] {
		require.NoError(t, res.Err, res.Job.Name)
		require.True(t, res.Checked)
		require.True(t, res.Matches, "%s: %v", res.Job.Name, res.Value)
		require.True(t, res.OK())
	}

	// the reference for F omits its z^2 terms
	require.NoError(t, results[3].Err)
	require.True(t, results[3].Checked)
	require.False(t, results[3].Matches)
	require.False(t, results[3].OK())

	require.True(t, errors.Is(results[4].Err, goknots.ErrMissingCrossing))
	require.False(t, results[4].Checked)

	require.Greater(t, runner.Stats().SkeinSteps, int64(0))
}

func TestRunCancelled(t *testing.T) {
	runner, err := batch.NewRunner(batch.Opts{Workers: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx, []batch.Job{{Name: "unknot", Diagram: "[[]]"}})
	require.True(t, errors.Is(err, context.Canceled))
}
