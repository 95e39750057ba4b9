package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ikvmbuild/internal/model"
)

// AssertionError is returned when an assertion fails.
// It includes the build logs to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Logs     string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Logs != "" {
		fmt.Fprintf(&buf, "\nBuild log:\n%s", e.Logs)
	}

	return buf.String()
}

func evaluate(a Assertion, r *Result) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Logs: r.Logs}
	}
	value := r.expand(a.Value)

	switch a.Type {
	case AssertStatus:
		if r.Report.Status != value {
			return fail(value, r.Report.Status)
		}

	case AssertErrorKind:
		got := string(model.KindOf(r.Err))
		if got != value {
			return fail(fmt.Sprintf("error kind %q", value), fmt.Sprintf("error kind %q (%v)", got, r.Err))
		}

	case AssertWarnings:
		want := a.Values
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(r.Report.Warnings, want) {
			return fail(fmt.Sprintf("%v", want), fmt.Sprintf("%v", r.Report.Warnings))
		}

	case AssertFileExists:
		if !r.exists(a.Path) {
			return fail(a.Path+" exists", "missing")
		}

	case AssertFileAbsent:
		if r.exists(a.Path) {
			return fail(a.Path+" absent", "present")
		}

	case AssertArgPresent:
		if !slices.Contains(r.Report.Invocation.Args, value) {
			return fail(value+" in arguments", strings.Join(r.Report.Invocation.Args, " "))
		}

	case AssertLastArg:
		args := r.Report.Invocation.Args
		if len(args) == 0 || args[len(args)-1] != value {
			return fail(value+" as last argument", strings.Join(args, " "))
		}

	case AssertHistory:
		if r.History.Status != value {
			return fail("history status "+value, r.History.Status)
		}

	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

// expand replaces the workspace placeholder with the workspace root.
func (r *Result) expand(s string) string {
	return strings.ReplaceAll(s, WorkPlaceholder, r.Workspace)
}

// normalize replaces the workspace root with the placeholder.
func (r *Result) normalize(s string) string {
	return strings.ReplaceAll(s, r.Workspace, WorkPlaceholder)
}
