package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ikvmbuild/internal/model"
)

// Snapshot captures the observable outcome of a scenario with the
// workspace root replaced by $WORK, so it is identical across runs.
type Snapshot struct {
	Scenario  string   `json:"scenario"`
	Status    string   `json:"status"`
	ErrorKind string   `json:"error_kind,omitempty"`
	ExitCode  int      `json:"exit_code"`
	Warnings  []string `json:"warnings"`
	Env       []string `json:"env"`
	Args      []string `json:"args"`
	Copied    []string `json:"copied"`
}

// Snapshot builds the normalized snapshot of a result.
func (r *Result) Snapshot(name string) Snapshot {
	s := Snapshot{
		Scenario:  name,
		Status:    r.Report.Status,
		ErrorKind: string(model.KindOf(r.Err)),
		ExitCode:  r.History.ExitCode,
		Warnings:  r.Report.Warnings,
		Env:       r.normalizeAll(r.Report.Invocation.Environ()),
		Args:      r.normalizeAll(r.Report.Invocation.Args),
		Copied:    r.normalizeAll(r.Report.Copied),
	}
	return s
}

func (r *Result) normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = r.normalize(v)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { result.Cleanup() })
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := json.MarshalIndent(result.Snapshot(name), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
