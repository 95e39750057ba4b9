package testutil

import (
	"testing"

	"github.com/roach88/ikvmbuild/internal/fixture"
)

// Fake ikvmc scripts; see package fixture.
const (
	CompilerOK       = fixture.CompilerOK
	CompilerWarnings = fixture.CompilerWarnings
	CompilerFail     = fixture.CompilerFail
)

// WriteCompiler installs script as <root>/bin/ikvmc.exe and returns root,
// the directory to use as the compiler install path. Run it with the "sh"
// runtime launcher.
func WriteCompiler(t testing.TB, root, script string) string {
	t.Helper()
	if err := fixture.InstallCompiler(root, script); err != nil {
		t.Fatalf("installing compiler: %v", err)
	}
	return root
}
