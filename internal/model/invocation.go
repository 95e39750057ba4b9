package model

import (
	"sort"
	"strings"
)

// Invocation is the fully assembled ikvmc command line.
type Invocation struct {
	Args []string          `json:"args"` // Args[0] is the program to launch
	Env  map[string]string `json:"env,omitempty"`
}

// Program returns the executable launched by the invocation.
func (i Invocation) Program() string {
	if len(i.Args) == 0 {
		return ""
	}
	return i.Args[0]
}

// Environ renders the environment overrides as sorted KEY=VALUE pairs.
func (i Invocation) Environ() []string {
	keys := make([]string, 0, len(i.Env))
	for k := range i.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+i.Env[k])
	}
	return out
}

// String renders the invocation as a shell-style command line, for logs.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Env)+len(i.Args))
	for _, kv := range i.Environ() {
		parts = append(parts, quote(kv))
	}
	for _, a := range i.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ExecResult is the outcome of running an Invocation.
type ExecResult struct {
	ExitCode  int    `json:"exit_code"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Truncated bool   `json:"truncated,omitempty"` // output exceeded the capture bound
}
