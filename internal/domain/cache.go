package domain

import (
	"context"
	"fmt"
	"strings"
)

// CacheKeyKind distinguishes cache key encodings.
type CacheKeyKind string

const (
	// KindPath names a rendered page of the front-end, e.g. "/clients/123".
	KindPath CacheKeyKind = "path"
	// KindTag names a logical data set, e.g. "client:0192...".
	KindTag CacheKeyKind = "tag"
)

// CacheKey identifies something to mark stale after a mutation.
type CacheKey struct {
	Kind  CacheKeyKind
	Value string
}

// PathKey builds a path key.
func PathKey(path string) CacheKey {
	return CacheKey{Kind: KindPath, Value: path}
}

// TagKey builds a tag key.
func TagKey(tag string) CacheKey {
	return CacheKey{Kind: KindTag, Value: tag}
}

// RecordTag is the tag of a single record.
func RecordTag(entityName, pubID string) CacheKey {
	return TagKey(entityName + ":" + pubID)
}

// OwnerTag is the tag of every record of an entity under one owner.
func OwnerTag(entityName, owner string) CacheKey {
	return TagKey(entityName + ":owner:" + owner)
}

// String encodes the key as "<kind>:<value>".
func (k CacheKey) String() string {
	return string(k.Kind) + ":" + k.Value
}

// IsZero reports whether the key is empty.
func (k CacheKey) IsZero() bool {
	return k.Value == ""
}

// ParseCacheKey decodes "<kind>:<value>". A bare string starting with "/"
// is read as a path, anything else without a known prefix as a tag.
func ParseCacheKey(s string) (CacheKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CacheKey{}, nil
	}
	if strings.HasPrefix(s, "/") {
		return PathKey(s), nil
	}
	kind, value, ok := strings.Cut(s, ":")
	if ok {
		switch CacheKeyKind(kind) {
		case KindPath:
			if !strings.HasPrefix(value, "/") {
				return CacheKey{}, fmt.Errorf("path key %q must start with /", value)
			}
			return PathKey(value), nil
		case KindTag:
			if value == "" {
				return CacheKey{}, fmt.Errorf("empty tag key")
			}
			return TagKey(value), nil
		}
	}
	return TagKey(s), nil
}

// Invalidator marks cached data stale. It is called after commit only; its
// failures never undo a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, key CacheKey) error
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func(ctx context.Context, key CacheKey) error

// Invalidate implements Invalidator.
func (f InvalidatorFunc) Invalidate(ctx context.Context, key CacheKey) error {
	return f(ctx, key)
}

// NopInvalidator ignores every key.
type NopInvalidator struct{}

// Invalidate implements Invalidator.
func (NopInvalidator) Invalidate(context.Context, CacheKey) error { return nil }

// ReadCache is a process-local cache of loaded records, addressed by the
// record tag. Invalidating the tag evicts the entry.
//
// A loader reads Generation before going to the store and passes it to Add.
// Add drops the value when any invalidation happened in between, so a read
// racing a commit cannot put the pre-commit row back.
type ReadCache interface {
	Get(key string) (any, bool)
	Generation() uint64
	Add(key string, value any, gen uint64) bool
}
