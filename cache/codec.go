package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Args carries the arguments of a cached call. Positional arguments keep
// their call order; keyword arguments are named and order-insensitive for
// key derivation.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// NewArgs builds an Args from positional values only.
func NewArgs(positional ...any) Args {
	return Args{Positional: positional}
}

// WithKeyword returns a copy of the args with the named keyword argument set.
func (a Args) WithKeyword(name string, value any) Args {
	kw := make(map[string]any, len(a.Keyword)+1)
	for k, v := range a.Keyword {
		kw[k] = v
	}
	kw[name] = value
	return Args{Positional: a.Positional, Keyword: kw}
}

// ComputeFunc is the computation being cached. Implementations must be
// deterministic with respect to their arguments for caching to be sound.
type ComputeFunc[V any] func(ctx context.Context, args Args) (V, error)

// EncodeKey derives the cache key for a call. Positional arguments are
// stringified in order; keyword arguments are rendered as name=value pairs
// sorted by name; all parts are joined with ":". Two calls with the same
// keyword arguments in different order therefore share a key.
//
// The encoding is not injective: distinct values with identical string forms
// collide. Callers pass arguments with distinguishing representations.
func EncodeKey(positional []any, keyword map[string]any) string {
	parts := make([]string, 0, len(positional)+len(keyword))
	for _, arg := range positional {
		parts = append(parts, fmt.Sprintf("%v", arg))
	}
	names := make([]string, 0, len(keyword))
	for name := range keyword {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, keyword[name]))
	}
	return strings.Join(parts, ":")
}

// hashKey condenses a derived key into a fixed-length hex digest, used by the
// disk policy to build safe filenames.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
