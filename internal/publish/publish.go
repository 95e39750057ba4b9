package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ikvmbuild/internal/model"
)

// Uploader stores a local file under an object key.
type Uploader interface {
	Upload(ctx context.Context, key, path string) error
}

// Publisher places the build's outputs in the output directory.
type Publisher struct {
	cfg      model.Config
	log      *slog.Logger
	uploader Uploader
}

// New creates a Publisher. uploader may be nil when remote publishing is
// not configured.
func New(cfg model.Config, uploader Uploader, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{cfg: cfg, log: log, uploader: uploader}
}

// Prepare creates the output directory and returns the artifact path the
// build registers. It runs before anything else so the path is known on
// every outcome, including failures and skipped builds.
func (p *Publisher) Prepare() (string, error) {
	dir := p.cfg.OutputDirectory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", model.NewIOError("unable to create output directory", dir, err)
	}
	return p.cfg.OutputPath(), nil
}

// Stub creates a zero-length artifact in place of a real build.
func (p *Publisher) Stub() error {
	path := p.cfg.OutputPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return model.NewIOError("unable to create stub artifact file", path, err)
	}
	return f.Close()
}

// CopyAuxiliary copies every configured copy entry into the output
// directory and returns the destination paths.
//
// An entry is tried as given first, then relative to the compiler install
// path. If neither exists the error names both locations.
func (p *Publisher) CopyAuxiliary() ([]string, error) {
	copied := make([]string, 0, len(p.cfg.CopyFiles))
	for _, entry := range p.cfg.CopyFiles {
		src, err := p.locate(entry)
		if err != nil {
			return copied, err
		}
		dst := filepath.Join(p.cfg.OutputDirectory, normalizeName(filepath.Base(src)))
		if err := copyFile(src, dst); err != nil {
			return copied, model.NewIOError(fmt.Sprintf("failed to copy %s into %s", src, p.cfg.OutputDirectory), src, err)
		}
		p.log.Debug("copied file", "src", src, "dst", dst)
		copied = append(copied, dst)
	}
	return copied, nil
}

func (p *Publisher) locate(entry string) (string, error) {
	if _, err := os.Stat(entry); err == nil {
		return entry, nil
	}
	alt := filepath.Join(p.cfg.CompilerInstallPath, entry)
	if _, err := os.Stat(alt); err == nil {
		return alt, nil
	}
	return "", model.NewIOError(fmt.Sprintf("%s does not exist (nor does %s)", entry, alt), entry, nil)
}

// CopyReferences copies dll dependencies into the output directory as
// <name>.<type>, dropping version information from the file name.
func (p *Publisher) CopyReferences(refs []model.Artifact) ([]string, error) {
	copied := make([]string, 0, len(refs))
	for _, ref := range refs {
		dst := filepath.Join(p.cfg.OutputDirectory, ReferenceFileName(ref))
		if err := copyFile(ref.File, dst); err != nil {
			return copied, model.NewIOError(fmt.Sprintf("failed to copy %s into %s", ref.ID(), p.cfg.OutputDirectory), ref.File, err)
		}
		p.log.Debug("copied dependency", "artifact", ref.ID(), "dst", dst)
		copied = append(copied, dst)
	}
	return copied, nil
}

// ReferenceFileName returns the unversioned file name for a dll dependency.
func ReferenceFileName(a model.Artifact) string {
	return normalizeName(a.Name + "." + a.Type)
}

// WithUploader returns a copy of p that uploads through u.
func (p *Publisher) WithUploader(u Uploader) *Publisher {
	c := *p
	c.uploader = u
	return &c
}

// Upload sends files to the configured object store under
// <prefix>/<buildID>/<file name>. It is a no-op without an uploader.
func (p *Publisher) Upload(ctx context.Context, buildID string, files []string) error {
	if p.uploader == nil {
		return nil
	}
	for _, f := range files {
		key := ObjectKey(p.cfg.Publish.Prefix, buildID, filepath.Base(f))
		if err := p.uploader.Upload(ctx, key, f); err != nil {
			return model.NewIOError("failed to upload artifact", f, err)
		}
		p.log.Info("published artifact", "file", f, "key", key)
	}
	return nil
}

// normalizeName puts file names in NFC so the same dependency name always
// maps to the same bytes on disk.
func normalizeName(name string) string {
	return norm.NFC.String(name)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
