// Package model holds the data shared by every stage of an ikvmbuild step.
//
// A build step flows through four records:
//   - Artifact: a resolved upstream dependency, supplied by the host build
//   - Config: the immutable settings for one invocation
//   - Invocation: the argument vector and environment overrides for ikvmc
//   - ExecResult: the exit code and captured output of that invocation
//
// Config and Invocation are built once per step and never mutated afterwards.
// Collections are always non-nil; an absent list is an empty slice.
//
// All fatal conditions are reported as *BuildError values carrying a Kind, so
// callers can branch with IsKind (or the IsXxx helpers) through any wrapping.
package model
