package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live, process-local state keyed by id. Entries
// expire after ttl so abandoned sessions do not pile up.
type SessionRepository[T any] struct {
	cache *cache.Cache
}

func NewSessionRepository[T any](ttl time.Duration) *SessionRepository[T] {
	return &SessionRepository[T]{
		cache: cache.New(ttl, ttl/2),
	}
}

func (r *SessionRepository[T]) Save(id string, value T) {
	r.cache.Set(id, value, cache.DefaultExpiration)
}

// SaveIfAbsent stores value unless id is taken, returning the stored entry
// and whether it was newly added.
func (r *SessionRepository[T]) SaveIfAbsent(id string, value T) (T, bool) {
	if err := r.cache.Add(id, value, cache.DefaultExpiration); err == nil {
		return value, true
	}
	if existing, ok := r.Get(id); ok {
		return existing, false
	}
	// Lost a race with an expiry; overwrite.
	r.Save(id, value)
	return value, true
}

func (r *SessionRepository[T]) Get(id string) (T, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(T), true
	}
	var zero T
	return zero, false
}

func (r *SessionRepository[T]) Delete(id string) {
	r.cache.Delete(id)
}

func (r *SessionRepository[T]) Count() int {
	return r.cache.ItemCount()
}

// OnEvicted runs fn for entries removed by expiry or Delete.
func (r *SessionRepository[T]) OnEvicted(fn func(id string, value T)) {
	r.cache.OnEvicted(func(id string, x interface{}) {
		fn(id, x.(T))
	})
}
