package descriptor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ikvmbuild/internal/classify"
	"github.com/roach88/ikvmbuild/internal/model"
)

// DefaultOutputDirectory is used when project.directory is omitted.
const DefaultOutputDirectory = "target"

// DefaultEnvFile is read from the descriptor's directory unless
// Options.EnvFile names another file.
const DefaultEnvFile = ".env"

// Options controls descriptor loading.
type Options struct {
	// EnvFile is the .env file for fallback values. Empty means
	// DefaultEnvFile next to the descriptor.
	EnvFile string

	// Getenv reads the process environment. Nil means os.Getenv.
	Getenv func(string) string
}

// Descriptor is a loaded build descriptor.
type Descriptor struct {
	Path         string
	Config       model.Config
	Dependencies []model.Artifact
}

// Source returns the dependencies as a classify.Source.
func (d *Descriptor) Source() classify.Source {
	return classify.StaticSource(d.Dependencies)
}

type document struct {
	Project struct {
		Directory string `yaml:"directory"`
		FinalName string `yaml:"final-name"`
	} `yaml:"project"`

	Compiler struct {
		InstallPath               string   `yaml:"install-path"`
		Executable                string   `yaml:"executable"`
		BaseLibraryPath           string   `yaml:"base-library-path"`
		ExtraArguments            []string `yaml:"extra-arguments"`
		ExtraReferences           []string `yaml:"extra-references"`
		CopyFiles                 []string `yaml:"copy-files"`
		CopyReferenceDependencies bool     `yaml:"copy-reference-dependencies"`
		CreateStubOnMissingTool   bool     `yaml:"create-stub-on-missing-tool"`
		CompileCodeOnly           bool     `yaml:"compile-code-only"`
		EscalateWarnings          bool     `yaml:"escalate-warnings"`
		ForceAlternateRuntime     bool     `yaml:"force-alternate-runtime"`
		RuntimeLauncher           string   `yaml:"runtime-launcher"`
		MaxOutputBytes            int      `yaml:"max-output-bytes"`
	} `yaml:"compiler"`

	Publish struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		Prefix    string `yaml:"prefix"`
		AccessKey string `yaml:"access-key"`
		SecretKey string `yaml:"secret-key"`
		UseSSL    bool   `yaml:"use-ssl"`
	} `yaml:"publish"`

	Dependencies []model.Artifact `yaml:"dependencies"`
}

// Load reads, validates and resolves the descriptor at path.
// Every failure is a CONFIGURATION error naming path.
func Load(path string, opts Options) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("unable to read build descriptor", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	dir := filepath.Dir(abs)

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = filepath.Join(dir, DefaultEnvFile)
	}
	env, err := LoadEnv(envFile, opts.Getenv)
	if err != nil {
		return nil, configError("unable to read env file", envFile, err)
	}

	d, err := Parse(data, dir, env)
	if err != nil {
		return nil, configError("invalid build descriptor", path, err)
	}
	d.Path = abs
	return d, nil
}

// Parse validates and resolves descriptor data. Relative paths resolve
// against dir.
func Parse(data []byte, dir string, env Env) (*Descriptor, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("descriptor is empty")
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor: %w", err)
	}

	return resolve(doc, dir, env), nil
}

func resolve(doc document, dir string, env Env) *Descriptor {
	c := doc.Compiler
	p := doc.Publish

	outDir := doc.Project.Directory
	if outDir == "" {
		outDir = DefaultOutputDirectory
	}

	cfg := model.NewConfig(
		model.WithCompilerInstallPath(relativeTo(dir, env.orDefault(c.InstallPath, EnvInstallPath))),
		model.WithCompilerExecutable(relativeTo(dir, env.orDefault(c.Executable, EnvExecutable))),
		model.WithBaseLibraryPath(relativeTo(dir, env.orDefault(c.BaseLibraryPath, EnvBaseLibraryPath))),
		model.WithExtraArguments(c.ExtraArguments...),
		model.WithExtraReferences(c.ExtraReferences...),
		model.WithCopyFiles(c.CopyFiles...),
		model.WithCopyReferenceDependencies(c.CopyReferenceDependencies),
		model.WithCreateStubOnMissingTool(c.CreateStubOnMissingTool),
		model.WithCompileCodeOnly(c.CompileCodeOnly),
		model.WithEscalateWarnings(c.EscalateWarnings),
		model.WithForceAlternateRuntime(c.ForceAlternateRuntime),
		model.WithRuntimeLauncher(c.RuntimeLauncher),
		model.WithMaxOutputBytes(c.MaxOutputBytes),
		model.WithOutput(relativeTo(dir, outDir), doc.Project.FinalName),
		model.WithPublish(model.PublishConfig{
			Endpoint:  p.Endpoint,
			Region:    p.Region,
			Bucket:    p.Bucket,
			Prefix:    p.Prefix,
			AccessKey: env.orDefault(p.AccessKey, EnvPublishAccessKey),
			SecretKey: env.orDefault(p.SecretKey, EnvPublishSecretKey),
			UseSSL:    p.UseSSL,
		}),
	)

	deps := make([]model.Artifact, 0, len(doc.Dependencies))
	for _, a := range doc.Dependencies {
		if a.Type == "" {
			a.Type = model.TypeJar
		}
		if a.Scope == "" {
			a.Scope = model.ScopeCompile
		}
		a.File = relativeTo(dir, a.File)
		deps = append(deps, a)
	}

	return &Descriptor{Config: cfg, Dependencies: deps}
}

// relativeTo anchors a relative path at dir. Empty stays empty.
func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func configError(msg, path string, err error) error {
	return &model.BuildError{Kind: model.ErrConfiguration, Message: msg, Path: path, Err: err}
}
