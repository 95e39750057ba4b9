// Package descriptor loads build descriptors: YAML documents naming the
// compiler options, output location and resolved dependencies of one
// IKVM build step.
//
// A descriptor is validated against an embedded CUE schema before it is
// decoded, so typos and wrongly typed values are reported with their path
// instead of being silently ignored. Paths inside the descriptor are
// relative to the descriptor's own directory, except extra-references
// (relative to the base library path) and copy-files (tried as given, then
// relative to the install path).
//
// Unset compiler locations and publish credentials fall back to the
// environment, then to an optional .env file:
//
//	IKVM_PATH                install-path
//	IKVMC_PATH               executable
//	IKVM_DLL_PATH            base-library-path
//	IKVM_PUBLISH_ACCESS_KEY  publish.access-key
//	IKVM_PUBLISH_SECRET_KEY  publish.secret-key
package descriptor
