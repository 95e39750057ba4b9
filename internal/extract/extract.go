// Package extract unpacks compile-unit archives into the scratch directory
// used by code-only builds.
package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/ikvmbuild/internal/model"
)

// Predicate decides whether an archive entry is written out.
type Predicate func(name string) bool

// ClassFiles accepts compiled class entries only.
func ClassFiles(name string) bool {
	return strings.HasSuffix(name, ".class")
}

// All accepts every entry.
func All(string) bool { return true }

// Extractor unpacks archives into a destination directory.
type Extractor struct {
	Accept Predicate
	Logger *slog.Logger
}

// New creates an Extractor using the given predicate.
func New(accept Predicate, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{Accept: accept, Logger: log}
}

// ExtractAll creates dest if needed and unpacks every archive into it.
//
// dest is reused if it already exists and is never cleaned. The first archive
// that fails aborts the whole run with an EXTRACTION error naming it.
func (e *Extractor) ExtractAll(archives []string, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return model.NewExtractionError(dest, err)
	}
	for _, archive := range archives {
		n, err := e.Extract(archive, dest)
		if err != nil {
			return model.NewExtractionError(archive, err)
		}
		e.Logger.Debug("extracted archive", "archive", archive, "entries", n, "dest", dest)
	}
	return nil
}

// Extract unpacks the accepted entries of one archive and returns how many
// were written.
func (e *Extractor) Extract(archive, dest string) (int, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return 0, err
	}
	defer r.Close()

	accept := e.Accept
	if accept == nil {
		accept = All
	}

	written := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !accept(f.Name) {
			continue
		}
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return written, err
		}
		if err := writeEntry(f, target); err != nil {
			return written, fmt.Errorf("entry %s: %w", f.Name, err)
		}
		written++
	}
	return written, nil
}

// entryPath joins an entry name to dest, rejecting names that escape it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
