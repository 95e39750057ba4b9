// Package runner executes the assembled ikvmc invocation.
//
// Execution is synchronous: the call blocks until the compiler exits, with
// stdout and stderr captured into separate in-memory buffers. Each buffer is
// bounded (64 MiB by default); anything beyond the bound is dropped and the
// result is marked truncated.
//
// There is no internal timeout or retry. A caller that needs a deadline
// passes a context carrying one; the process is killed when it expires and
// the run reports an INVOCATION error.
//
// Warning escalation looks for lines of the form
//
//	Warning IKVMC0100: class "a.B" not found
//
// and fails the run with the sorted set of distinct codes.
package runner
