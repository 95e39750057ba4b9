package command

import (
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultResolverCacheSize bounds how many base library directories a
// Resolvers cache remembers.
const DefaultResolverCacheSize = 64

// Resolver maps assembly reference names to paths under the base library
// directory.
//
// Resolution rules:
//   - absolute names are returned unchanged
//   - relative names are joined to the base directory when it is a directory
//   - otherwise the name is passed through and ikvmc reports any failure
//
// The directory check happens once, when the Resolver is created.
type Resolver struct {
	dir   string
	valid bool
}

// NewResolver creates a Resolver for the given base library directory.
func NewResolver(dir string) *Resolver {
	r := &Resolver{dir: dir}
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.valid = true
		}
	}
	return r
}

// Dir returns the configured base library directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Valid reports whether the base library directory exists and is a directory.
func (r *Resolver) Valid() bool {
	return r.valid
}

// Resolve returns the path to pass to ikvmc for the named reference.
func (r *Resolver) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if !r.valid {
		return name
	}
	joined := filepath.Join(r.dir, name)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

// Resolvers memoises one Resolver per base library directory, so every
// build sharing a directory reuses the same directory check. The answer is
// fixed for the lifetime of the cache: a directory created or removed later
// is not noticed until the entry is evicted.
//
// Safe for concurrent use.
type Resolvers struct {
	cache *lru.Cache[string, *Resolver]
}

// NewResolvers creates a cache holding up to size directories. A
// non-positive size means DefaultResolverCacheSize.
func NewResolvers(size int) *Resolvers {
	if size <= 0 {
		size = DefaultResolverCacheSize
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *Resolver](size)
	return &Resolvers{cache: cache}
}

// For returns the Resolver for dir, creating it on first use.
func (rs *Resolvers) For(dir string) *Resolver {
	if r, ok := rs.cache.Get(dir); ok {
		return r
	}
	r := NewResolver(dir)
	rs.cache.Add(dir, r)
	return r
}

// Len returns the number of cached directories.
func (rs *Resolvers) Len() int {
	return rs.cache.Len()
}
