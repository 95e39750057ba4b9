// Package harness runs end-to-end build scenarios against the engine.
//
// A scenario lays out a throwaway workspace (a fake ikvmc, jars, dlls and
// auxiliary files), loads a build descriptor from it and runs one build
// with deterministic build IDs. The outcome is checked with assertions and
// can be compared against a golden snapshot.
//
// # Scenario Format
//
//	name: code_only
//	description: "Class files are extracted and compiled with -recurse"
//	compiler: ok               # ok | warnings | fail | none
//	jars:
//	  m2/core.jar:
//	    a/B.class: "cafebabe"
//	files:
//	  ikvm/bin/IKVM.Runtime.dll: "runtime"
//	descriptor: |
//	  project:
//	    final-name: lib
//	  compiler:
//	    install-path: ikvm
//	    compile-code-only: true
//	  dependencies:
//	    - {group: org.example, name: core, file: m2/core.jar}
//	assertions:
//	  - type: status
//	    value: compiled
//	  - type: file_exists
//	    path: target/dll-classes/a/B.class
//
// Paths in files, jars and the descriptor are relative to the workspace.
// Assertion values may use $WORK for the workspace root. The fake compiler
// always runs through the "sh" launcher, so scenarios behave the same on
// every host.
//
// # Assertion Types
//
//   - status: the build status equals value
//   - error_kind: the build error kind equals value ("" for success)
//   - warnings: the reported warning codes equal values
//   - file_exists / file_absent: path exists or not after the build
//   - arg_present: value is one of the compiler arguments
//   - last_arg: value is the final compiler argument
//   - history: the recorded history row has status value
package harness
