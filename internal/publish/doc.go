// Package publish registers and places the outputs of a build step.
//
// The primary artifact is always <output-dir>/<final-name>.dll. Its path is
// fixed before the compiler runs so callers can report it whatever happens.
// After a successful compile, configured auxiliary files and (optionally)
// dll dependencies are copied next to it, and everything can be uploaded to
// an S3-compatible bucket.
package publish
