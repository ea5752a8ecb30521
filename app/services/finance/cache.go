package finance

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// yearCache memoizes one value per academic year with single-flight
// semantics: the first caller for a year runs the build, concurrent
// callers for the same year share that run's result. A failed build leaves
// no entry, so the next call retries the whole pipeline.
type yearCache[T any] struct {
	mu      sync.Mutex
	gen     int
	entries map[int]T
	flight  singleflight.Group
}

func newYearCache[T any]() *yearCache[T] {
	return &yearCache[T]{entries: make(map[int]T)}
}

func (c *yearCache[T]) get(year int, build func() (T, error)) (T, error) {
	c.mu.Lock()
	if value, ok := c.entries[year]; ok {
		c.mu.Unlock()
		return value, nil
	}
	gen := c.gen
	c.mu.Unlock()

	value, err, _ := c.flight.Do(strconv.Itoa(year), func() (interface{}, error) {
		c.mu.Lock()
		if existing, ok := c.entries[year]; ok {
			c.mu.Unlock()
			return existing, nil
		}
		c.mu.Unlock()

		built, err := build()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// A clear that raced this build wins: the result is still handed
		// to the waiting callers but is not memoized for future ones.
		if c.gen == gen {
			c.entries[year] = built
		}
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// clear drops every memoized year. In-flight builds already handed out
// are unaffected; only future lookups refetch.
func (c *yearCache[T]) clear() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[int]T)
	c.mu.Unlock()
}
