package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ikvmbuild/internal/testutil"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_FailedAssertionsAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_expectations",
		Description: "Assertions that do not hold",
		Compiler:    CompilerFail,
		Descriptor:  "project:\n  final-name: lib\ncompiler:\n  install-path: ikvm\n",
		Assertions: []Assertion{
			{Type: AssertStatus, Value: "compiled"},
			{Type: AssertErrorKind, Value: "COMPILATION"},
			{Type: AssertFileExists, Path: "target/lib.dll"},
		},
	}

	result := runScenario(t, scenario)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Assertion failed: status")
	assert.Contains(t, result.Errors[0], "Build log:")
	assert.Contains(t, result.Errors[1], "Assertion failed: file_exists")
	assert.Equal(t, 3, result.History.ExitCode)
}

func TestRun_MissingExecutable(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_exe",
		Description: "Install directory exists but holds no compiler",
		Compiler:    CompilerNone,
		Files:       map[string]string{"ikvm/README": "empty"},
		Descriptor:  "project:\n  final-name: lib\ncompiler:\n  install-path: ikvm\n",
		Assertions: []Assertion{
			{Type: AssertStatus, Value: "failed"},
			{Type: AssertErrorKind, Value: "CONFIGURATION"},
			{Type: AssertFileAbsent, Path: "target/lib.dll"},
			{Type: AssertHistory, Value: "failed"},
		},
	}

	result := runScenario(t, scenario)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
	assert.Equal(t, -1, result.History.ExitCode)
	assert.Contains(t, result.History.ErrorMessage, "ikvmc executable does not exist")
}

func TestRun_InvalidDescriptor(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_descriptor",
		Description: "Descriptor missing its final name",
		Compiler:    CompilerOK,
		Descriptor:  "project: {}\n",
		Assertions:  []Assertion{{Type: AssertStatus, Value: "failed"}},
	}

	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_descriptor")

	// The half-built workspace is removed.
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResult_CleanupRemovesWorkspace(t *testing.T) {
	scenario := &Scenario{
		Name:        "cleanup",
		Description: "Workspace outlives Run until cleaned up",
		Compiler:    CompilerOK,
		Jars:        map[string]map[string]string{"libs/a.jar": {"a/A.class": "a"}},
		Descriptor: `project:
  final-name: lib
compiler:
  install-path: ikvm
dependencies:
  - group: g
    name: a
    file: libs/a.jar
`,
		Assertions: []Assertion{{Type: AssertStatus, Value: "compiled"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, strings.Join(result.Errors, "\n"))
	assert.DirExists(t, result.Workspace)
	assert.FileExists(t, filepath.Join(result.Workspace, "target", "lib.dll"))

	require.NoError(t, result.Cleanup())
	assert.NoDirExists(t, result.Workspace)
	assert.NoError(t, (&Result{}).Cleanup())
}

// runScenario runs a scenario that is expected to set up cleanly and
// removes its workspace when the test ends.
func runScenario(t *testing.T, scenario *Scenario) *Result {
	t.Helper()
	result, err := Run(scenario)
	require.NoError(t, err)
	t.Cleanup(func() { _ = result.Cleanup() })
	return result
}

func TestSnapshot_NormalizesWorkspace(t *testing.T) {
	scenario := &Scenario{
		Name:        "snapshot",
		Description: "Snapshot paths are workspace-relative",
		Compiler:    CompilerOK,
		Jars:        map[string]map[string]string{"libs/a.jar": {"a/A.class": "a"}},
		Descriptor: `project:
  final-name: out
compiler:
  install-path: ikvm
dependencies:
  - group: g
    name: a
    file: libs/a.jar
`,
		Assertions: []Assertion{{Type: AssertLastArg, Value: "$WORK/libs/a.jar"}},
	}

	result := runScenario(t, scenario)
	require.True(t, result.Pass, strings.Join(result.Errors, "\n"))

	snap := result.Snapshot(scenario.Name)
	assert.Equal(t, "compiled", snap.Status)
	assert.Empty(t, snap.ErrorKind)
	assert.Contains(t, snap.Args, "-out:$WORK/target/out.dll")
	for _, arg := range snap.Args {
		assert.NotContains(t, arg, result.Workspace)
	}
}

func TestEvaluate_UnknownType(t *testing.T) {
	err := evaluate(Assertion{Type: "bogus"}, &Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown assertion type")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\ncompiler: ok\ndescriptor: d\nasserts: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\ncompiler: ok\ndescriptor: d\nassertions: [{type: status, value: compiled}]\n",
			wantErr: "name is required",
		},
		{
			name:    "bad compiler",
			content: "name: x\ndescription: d\ncompiler: gcj\ndescriptor: d\nassertions: [{type: status, value: compiled}]\n",
			wantErr: "compiler must be one of",
		},
		{
			name:    "no assertions",
			content: "name: x\ndescription: d\ncompiler: ok\ndescriptor: d\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "status without value",
			content: "name: x\ndescription: d\ncompiler: ok\ndescriptor: d\nassertions: [{type: status}]\n",
			wantErr: "status requires value",
		},
		{
			name:    "file_exists without path",
			content: "name: x\ndescription: d\ncompiler: ok\ndescriptor: d\nassertions: [{type: file_exists}]\n",
			wantErr: "file_exists requires path",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: d\ncompiler: ok\ndescriptor: d\nassertions: [{type: trace}]\n",
			wantErr: `unknown assertion type "trace"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "s.yaml"), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
