// Package engine runs one IKVM build step from start to finish.
//
// A build is strictly sequential:
//  1. The output path is registered before anything can fail
//  2. A missing install path stubs or skips the step
//  3. The install path and executable are checked
//  4. Dependencies are partitioned into compile units and references
//  5. In code-only mode, class files are extracted to the scratch directory
//  6. The ikvmc command is assembled and executed
//  7. Auxiliary files and dll dependencies are copied next to the output
//  8. Outputs are optionally uploaded and the run recorded in history
//
// Each step either succeeds or ends the build with a typed
// model.BuildError. The Report always carries the build ID and output path,
// so callers can describe failed builds as precisely as successful ones.
//
// NEVER run two builds against the same output directory concurrently: the
// scratch directory is shared and accumulates between runs.
package engine
