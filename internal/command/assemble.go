package command

import (
	"log/slog"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"

	"github.com/roach88/ikvmbuild/internal/classify"
	"github.com/roach88/ikvmbuild/internal/model"
)

// ikvmc argument prefixes.
const (
	OutPrefix     = "-out:"
	RefPrefix     = "-r:"
	RecursePrefix = "-recurse:"
	ClassSuffix   = ".class"

	// SearchPathEnv points the alternate runtime at the base library directory.
	SearchPathEnv = "MONO_PATH"
)

// FixedArguments always lead the ikvmc flags.
var FixedArguments = []string{"-nostdlib", "-target:library"}

// BaseLibraries are referenced first, in this order, on every invocation.
var BaseLibraries = []string{"mscorlib.dll", "System.dll", "System.Core.dll"}

// Platform describes the host the build runs on.
type Platform struct {
	GOOS string
}

// HostPlatform returns the platform of the running process.
func HostPlatform() Platform {
	return Platform{GOOS: goruntime.GOOS}
}

// Direct reports whether ikvmc can be executed without the runtime launcher.
// ikvmc.exe targets Windows natively; everywhere else it needs mono.
func (p Platform) Direct(cfg model.Config) bool {
	return p.GOOS == "windows" && !cfg.ForceAlternateRuntime
}

// Assembler builds the ikvmc invocation for a build step.
type Assembler struct {
	Platform Platform
	Logger   *slog.Logger

	// Resolvers supplies the base library resolver. Nil means a fresh
	// Resolver for every call.
	Resolvers *Resolvers
}

// NewAssembler creates an Assembler for the host platform.
func NewAssembler(log *slog.Logger) *Assembler {
	return &Assembler{Platform: HostPlatform(), Logger: log, Resolvers: NewResolvers(0)}
}

// Resolver returns the resolver for a base library directory.
func (a *Assembler) Resolver(dir string) *Resolver {
	if a.Resolvers == nil {
		return NewResolver(dir)
	}
	return a.Resolvers.For(dir)
}

// Assemble builds the ordered argument vector and environment overrides.
//
// The order is fixed: launch head, fixed flags, user flags, -out:, base
// library references, user references, dll dependency references, then either
// the compile-unit archives or a single -recurse: over the scratch directory.
// The result depends only on its inputs.
func (a *Assembler) Assemble(cfg model.Config, deps classify.Result) model.Invocation {
	log := a.Logger
	if log == nil {
		log = slog.Default()
	}
	resolver := a.Resolver(cfg.BaseLibraryPath)

	inv := model.Invocation{Env: map[string]string{}}
	exe := absPath(cfg.CompilerExecutable)

	if a.Platform.Direct(cfg) {
		inv.Args = append(inv.Args, exe)
	} else {
		inv.Args = append(inv.Args, cfg.RuntimeLauncher, exe)
		if cfg.BaseLibraryPath != "" {
			inv.Env[SearchPathEnv] = cfg.BaseLibraryPath
		}
	}

	inv.Args = append(inv.Args, FixedArguments...)

	for _, arg := range cfg.ExtraArguments {
		if slices.Contains(FixedArguments, arg) {
			continue
		}
		if strings.HasPrefix(arg, OutPrefix) {
			log.Warn("ignoring -out: argument; set the output directory and name instead", "arg", arg)
			continue
		}
		inv.Args = append(inv.Args, arg)
	}

	inv.Args = append(inv.Args, OutPrefix+cfg.OutputPath())

	for _, lib := range BaseLibraries {
		inv.Args = append(inv.Args, RefPrefix+resolver.Resolve(lib))
	}
	for _, ref := range cfg.ExtraReferences {
		if slices.Contains(BaseLibraries, ref) {
			continue
		}
		inv.Args = append(inv.Args, RefPrefix+resolver.Resolve(ref))
	}
	for _, dll := range deps.References {
		inv.Args = append(inv.Args, RefPrefix+absPath(dll.File))
	}

	if cfg.CompileCodeOnly {
		inv.Args = append(inv.Args, RecurseArgument(cfg.ScratchDir()))
	} else {
		for _, unit := range deps.CompileUnits {
			inv.Args = append(inv.Args, absPath(unit.File))
		}
	}

	return inv
}

// RecurseArgument returns the -recurse: token selecting every class file
// under dir.
func RecurseArgument(dir string) string {
	return RecursePrefix + dir + string(filepath.Separator) + "*" + ClassSuffix
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
