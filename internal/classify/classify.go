// Package classify partitions resolved dependencies into the archives that
// ikvmc compiles and the assemblies it only references.
package classify

import (
	"fmt"
	"log/slog"

	"github.com/roach88/ikvmbuild/internal/model"
)

// Source supplies the dependency list resolved by the host build.
type Source interface {
	Artifacts() ([]model.Artifact, error)
}

// StaticSource is a Source over an already-resolved slice.
type StaticSource []model.Artifact

// Artifacts returns the slice unchanged.
func (s StaticSource) Artifacts() ([]model.Artifact, error) {
	return s, nil
}

// Result holds the two partitions. Both preserve resolution order.
type Result struct {
	CompileUnits []model.Artifact `json:"compile_units"`
	References   []model.Artifact `json:"references"`
}

// CompileUnitFiles returns the file paths of the compile units, in order.
func (r Result) CompileUnitFiles() []string {
	files := make([]string, len(r.CompileUnits))
	for i, a := range r.CompileUnits {
		files[i] = a.File
	}
	return files
}

// Classify reads the source once and partitions the non-test artifacts.
//
// A fault from the source is returned as a RESOLUTION error; nothing is retried.
func Classify(src Source, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}

	artifacts, err := src.Artifacts()
	if err != nil {
		return Result{}, model.NewResolutionError("failed to resolve dependencies", err)
	}

	res := Result{
		CompileUnits: []model.Artifact{},
		References:   []model.Artifact{},
	}
	for _, a := range artifacts {
		log.Debug("considering artifact", "id", a.ID(), "type", a.Type, "scope", a.Scope)

		if a.IsTest() {
			continue
		}
		if a.File == "" {
			return Result{}, model.NewResolutionError(
				fmt.Sprintf("artifact %s has no resolved file", a.ID()), nil)
		}
		if a.IsReference() {
			res.References = append(res.References, a)
		} else {
			res.CompileUnits = append(res.CompileUnits, a)
		}
	}

	return res, nil
}
