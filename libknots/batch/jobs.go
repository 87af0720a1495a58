package batch

import (
	"io"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// JobFile is the YAML layout of a batch of jobs:
//
//	family: homfly
//	jobs:
//	  - name: 3_1
//	    pd: "[[1,5,2,4],[3,1,4,6],[5,3,6,2]]"
//	    expected: "2*v^2 - v^4 + v^2*z^2"
//	  - name: hopf
//	    sg: "[[(1,-1),(-2,-1)],[(-1,-1),(2,-1)]]"
//	    family: L
type JobFile struct {
	Family string     `yaml:"family,omitempty"`
	Jobs   []JobEntry `yaml:"jobs"`
}

type JobEntry struct {
	Name     string `yaml:"name"`
	PD       string `yaml:"pd,omitempty"`
	SG       string `yaml:"sg,omitempty"`
	Family   string `yaml:"family,omitempty"`
	Expected string `yaml:"expected,omitempty"`
}

// ReadJobs decodes a JobFile, returning its jobs and default family (zero if none is named).
func ReadJobs(r io.Reader) ([]Job, goknots.Family, error) {
	var file JobFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, 0, errors.Wrap(goknots.ErrParse, err.Error())
	}

	var family goknots.Family
	if file.Family != "" {
		var ok bool
		if family, ok = goknots.ParseFamily(file.Family); !ok {
			return nil, 0, errors.Wrapf(goknots.ErrParse, "unknown family %q", file.Family)
		}
	}

	jobs := make([]Job, len(file.Jobs))
	for i, entry := range file.Jobs {
		job := Job{
			Name:     entry.Name,
			Diagram:  entry.PD,
			Expected: entry.Expected,
		}
		switch {
		case entry.PD != "" && entry.SG != "":
			return nil, 0, errors.Wrapf(goknots.ErrParse, "job %d (%s): both pd and sg given", i, entry.Name)
		case entry.SG != "":
			job.Diagram = entry.SG
		case entry.PD == "":
			return nil, 0, errors.Wrapf(goknots.ErrParse, "job %d (%s): no diagram", i, entry.Name)
		}
		if entry.Family != "" {
			f, ok := goknots.ParseFamily(entry.Family)
			if !ok {
				return nil, 0, errors.Wrapf(goknots.ErrParse, "job %d (%s): unknown family %q", i, entry.Name, entry.Family)
			}
			job.Family = f
		}
		if job.Name == "" {
			job.Name = job.Diagram
		}
		jobs[i] = job
	}
	return jobs, family, nil
}
