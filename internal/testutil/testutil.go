// Package testutil provides fixtures shared by the ikvmbuild test suites:
// jar archives built on the fly and a shell script standing in for ikvmc.
package testutil

import (
	"testing"

	"github.com/roach88/ikvmbuild/internal/fixture"
)

// WriteJar writes a zip archive at path holding the given entries and
// returns path. Entries are written in name order.
func WriteJar(t testing.TB, path string, entries map[string]string) string {
	t.Helper()
	if err := fixture.WriteJar(path, entries); err != nil {
		t.Fatalf("writing jar: %v", err)
	}
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := fixture.WriteFile(path, content); err != nil {
		t.Fatal(err)
	}
	return path
}
