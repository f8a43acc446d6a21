package accessor

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shrek82/dbutils/logger"
	"github.com/shrek82/dbutils/model"
)

// Key identifies one field of one type. reflect.Type values are unique per
// type for the life of the process, so keys of distinct types never collide.
type Key struct {
	Type  reflect.Type
	Field string
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Logger receives a debug line per compiled accessor. Nil disables logging.
	Logger logger.Logger
	// Location is used to parse textual timestamps that carry no zone.
	// Defaults to time.UTC.
	Location *time.Location
}

func (o *CacheOptions) location() *time.Location {
	if o == nil || o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Cache memoizes compiled accessors by Key. Entries are created on first
// request and never evicted. A Cache is safe for concurrent use.
type Cache struct {
	entries  sync.Map   // Key -> *Accessor
	mu       sync.Mutex // serializes compilation
	compiled atomic.Int64
	opts     CacheOptions
}

// NewCache creates an empty cache. opts may be nil.
func NewCache(opts *CacheOptions) *Cache {
	c := &Cache{}
	if opts != nil {
		c.opts = *opts
	}
	return c
}

var (
	defaultCache     *Cache
	defaultCacheOnce sync.Once
)

// Default returns the process-wide cache, created on first call.
func Default() *Cache {
	defaultCacheOnce.Do(func() { defaultCache = NewCache(nil) })
	return defaultCache
}

// Get returns the accessor for field on t, compiling it on first request.
// t may be a struct type or a pointer to one. The field name is matched
// exactly against the struct field name.
func (c *Cache) Get(t reflect.Type, field string) (*Accessor, error) {
	m, err := model.GetModel(t)
	if err != nil {
		return nil, err
	}

	key := Key{Type: m.Type, Field: field}
	if v, ok := c.entries.Load(key); ok {
		return v.(*Accessor), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// another goroutine may have published it while we waited
	if v, ok := c.entries.Load(key); ok {
		return v.(*Accessor), nil
	}

	f, ok := m.Field(field)
	if !ok {
		return nil, &FieldError{Type: m.Type, Field: field}
	}

	a := compile(f, &c.opts)
	c.entries.Store(key, a)
	c.compiled.Add(1)
	if c.opts.Logger != nil {
		c.opts.Logger.Debug("compiled accessor %s (%s)", f, f.Type)
	}
	return a, nil
}

// Len returns the number of published accessors.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Compiled returns how many accessors this cache has compiled.
func (c *Cache) Compiled() int64 {
	return c.compiled.Load()
}
