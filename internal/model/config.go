package model

import (
	"path/filepath"
)

// Defaults applied by NewConfig.
const (
	DefaultBaseLibraryPath = "/Developer/MonoTouch/usr/lib/mono/2.1"
	DefaultRuntimeLauncher = "mono"
	DefaultMaxOutputBytes  = 64 << 20

	// OutputExtension is appended to OutputName to form the artifact file.
	OutputExtension = ".dll"
)

// Config is the resolved configuration for one build step.
//
// Build it with NewConfig; the zero value has nil collections and no defaults.
// A Config is treated as immutable once constructed.
type Config struct {
	CompilerInstallPath string // IKVM installation root; empty means the tool is unavailable
	CompilerExecutable  string // ikvmc.exe; defaults to <install>/bin/ikvmc.exe
	BaseLibraryPath     string // directory holding mscorlib.dll and friends

	ExtraArguments  []string // passed to ikvmc after the fixed flags
	ExtraReferences []string // absolute, or relative to BaseLibraryPath
	CopyFiles       []string // absolute, or relative to CompilerInstallPath

	CopyReferenceDependencies bool
	CreateStubOnMissingTool   bool
	CompileCodeOnly           bool
	EscalateWarnings          bool
	ForceAlternateRuntime     bool

	RuntimeLauncher string // alternate runtime used when not executing directly
	MaxOutputBytes  int    // per-stream capture bound

	OutputDirectory string
	OutputName      string

	Publish PublishConfig
}

// PublishConfig describes an optional S3-compatible destination for the
// produced artifacts. Publishing is disabled when Bucket is empty.
type PublishConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Enabled reports whether remote publishing is configured.
func (p PublishConfig) Enabled() bool {
	return p.Bucket != ""
}

// Option mutates a Config during construction.
type Option func(*Config)

// NewConfig builds a Config from options and fills in defaults.
func NewConfig(opts ...Option) Config {
	c := Config{}
	for _, opt := range opts {
		opt(&c)
	}
	return c.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.BaseLibraryPath == "" {
		c.BaseLibraryPath = DefaultBaseLibraryPath
	}
	if c.RuntimeLauncher == "" {
		c.RuntimeLauncher = DefaultRuntimeLauncher
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if c.CompilerExecutable == "" && c.CompilerInstallPath != "" {
		c.CompilerExecutable = filepath.Join(c.CompilerInstallPath, "bin", "ikvmc.exe")
	}
	c.ExtraArguments = nonNil(c.ExtraArguments)
	c.ExtraReferences = nonNil(c.ExtraReferences)
	c.CopyFiles = nonNil(c.CopyFiles)
	return c
}

// ToolAvailable reports whether a compiler install path was configured.
func (c Config) ToolAvailable() bool {
	return c.CompilerInstallPath != ""
}

// OutputPath returns the deterministic path of the produced assembly.
func (c Config) OutputPath() string {
	p := filepath.Join(c.OutputDirectory, c.OutputName+OutputExtension)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// ScratchDir returns the directory used for class extraction in code-only mode.
func (c Config) ScratchDir() string {
	p := filepath.Join(c.OutputDirectory, "dll-classes")
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// WithCompilerInstallPath sets the IKVM installation root.
func WithCompilerInstallPath(p string) Option { return func(c *Config) { c.CompilerInstallPath = p } }

// WithCompilerExecutable overrides the ikvmc.exe location.
func WithCompilerExecutable(p string) Option { return func(c *Config) { c.CompilerExecutable = p } }

// WithBaseLibraryPath sets the standard library directory.
func WithBaseLibraryPath(p string) Option { return func(c *Config) { c.BaseLibraryPath = p } }

// WithExtraArguments sets additional ikvmc arguments.
func WithExtraArguments(args ...string) Option {
	return func(c *Config) { c.ExtraArguments = args }
}

// WithExtraReferences sets additional assemblies to reference.
func WithExtraReferences(refs ...string) Option {
	return func(c *Config) { c.ExtraReferences = refs }
}

// WithCopyFiles sets files to copy into the output directory.
func WithCopyFiles(files ...string) Option {
	return func(c *Config) { c.CopyFiles = files }
}

// WithCopyReferenceDependencies toggles copying dll dependencies to the output.
func WithCopyReferenceDependencies(v bool) Option {
	return func(c *Config) { c.CopyReferenceDependencies = v }
}

// WithCreateStubOnMissingTool toggles stub creation when no install path is set.
func WithCreateStubOnMissingTool(v bool) Option {
	return func(c *Config) { c.CreateStubOnMissingTool = v }
}

// WithCompileCodeOnly toggles class-only extraction.
func WithCompileCodeOnly(v bool) Option { return func(c *Config) { c.CompileCodeOnly = v } }

// WithEscalateWarnings toggles failing the build on compiler warnings.
func WithEscalateWarnings(v bool) Option { return func(c *Config) { c.EscalateWarnings = v } }

// WithForceAlternateRuntime forces launching through the runtime launcher.
func WithForceAlternateRuntime(v bool) Option {
	return func(c *Config) { c.ForceAlternateRuntime = v }
}

// WithRuntimeLauncher sets the alternate runtime launcher (default "mono").
func WithRuntimeLauncher(l string) Option { return func(c *Config) { c.RuntimeLauncher = l } }

// WithMaxOutputBytes bounds how much of each output stream is captured.
func WithMaxOutputBytes(n int) Option { return func(c *Config) { c.MaxOutputBytes = n } }

// WithOutput sets the output directory and base name.
func WithOutput(dir, name string) Option {
	return func(c *Config) {
		c.OutputDirectory = dir
		c.OutputName = name
	}
}

// WithPublish configures remote publishing.
func WithPublish(p PublishConfig) Option { return func(c *Config) { c.Publish = p } }
