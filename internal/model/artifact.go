package model

// Scope is the dependency scope reported by the host build's resolver.
type Scope string

// Known scopes. Anything else is treated like compile scope.
const (
	ScopeCompile  Scope = "compile"
	ScopeRuntime  Scope = "runtime"
	ScopeProvided Scope = "provided"
	ScopeSystem   Scope = "system"
	ScopeTest     Scope = "test"
)

// Artifact type tags.
const (
	TypeJar = "jar" // byte-code archive, compiled into the output
	TypeDLL = "dll" // managed assembly, referenced directly
)

// Artifact is one resolved upstream dependency.
type Artifact struct {
	Group   string `json:"group" yaml:"group"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Type    string `json:"type" yaml:"type"`   // "jar", "dll", ...
	Scope   Scope  `json:"scope" yaml:"scope"` // "compile", "test", ...
	File    string `json:"file" yaml:"file"`   // absolute path to the resolved file
}

// ID returns the group:name identity of the artifact.
func (a Artifact) ID() string {
	return a.Group + ":" + a.Name
}

// IsReference reports whether the artifact is an already-built assembly.
func (a Artifact) IsReference() bool {
	return a.Type == TypeDLL
}

// IsTest reports whether the artifact is test-scoped.
func (a Artifact) IsTest() bool {
	return a.Scope == ScopeTest
}
