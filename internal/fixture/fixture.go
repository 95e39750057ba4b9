// Package fixture lays out build inputs on disk: plain files, jar archives
// and shell scripts standing in for ikvmc. It backs the scenario harness and
// the test helpers in testutil.
package fixture

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// CompilerOK echoes its arguments, writes the -out: file and exits 0.
const CompilerOK = `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in
    -out:*) out="${a#-out:}" ;;
  esac
done
echo "ikvmc args: $*"
printf 'MZ' > "$out"
`

// CompilerWarnings succeeds but reports IKVM-style warnings on both streams.
const CompilerWarnings = `#!/bin/sh
echo "Warning IKVMC0100: class \"a.B\" not found"
echo "Note IKVMC0002: output file is x.dll"
echo "Warning IKVMC0100: class \"a.C\" not found" >&2
echo "Warning IKVMC0105: unable to compile class \"a.D\"" >&2
`

// CompilerFail writes a diagnostic to stderr and exits 3.
const CompilerFail = `#!/bin/sh
echo "compiling"
echo "Error IKVMC4001: something broke" >&2
exit 3
`

// WriteFile writes content to path, creating parent directories.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteJar writes a zip archive at path holding the given entries.
// Entries are written in name order.
func WriteJar(path string, entries map[string]string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating jar directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating jar: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing jar: %w", err)
	}
	return nil
}

// InstallCompiler writes script as <root>/bin/ikvmc.exe. Run it with the
// "sh" runtime launcher.
func InstallCompiler(root, script string) error {
	return WriteFile(filepath.Join(root, "bin", "ikvmc.exe"), script)
}
