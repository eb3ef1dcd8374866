// Package model keeps loaded translation models for the life of the process.
//
// Loading a model is slow and expensive, so the Cache loads each id at most
// once, even when several requests ask for it at the same time. Handles are
// never evicted.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNilHandle is returned when a Loader reports success without a handle.
var ErrNilHandle = errors.New("loader returned no handle")

// Handle is a loaded, ready-to-use translation model.
type Handle interface {
	// ID returns the model identifier the handle was loaded for.
	ID() string

	// Translate encodes text, generates, and decodes the first output
	// sequence.
	Translate(ctx context.Context, text string) (string, error)
}

// Loader loads a model by id.
type Loader func(ctx context.Context, modelID string) (Handle, error)

// Cache maps model ids to loaded handles.
type Cache struct {
	load    Loader
	mu      sync.RWMutex
	handles map[string]Handle
	group   singleflight.Group
}

// NewCache creates an empty cache that loads with load.
func NewCache(load Loader) *Cache {
	return &Cache{
		load:    load,
		handles: make(map[string]Handle),
	}
}

// Get returns the handle for modelID, loading it on first use. Load errors
// are returned to the caller and not remembered.
//
// Concurrent callers for one id share a single load. The load does not
// inherit the caller's cancellation, so one caller giving up does not fail
// the others; each caller still returns as soon as its own ctx is done.
func (c *Cache) Get(ctx context.Context, modelID string) (Handle, error) {
	c.mu.RLock()
	h, ok := c.handles[modelID]
	c.mu.RUnlock()
	if ok {
		return h, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(modelID, func() (any, error) {
		// Another caller may have finished loading between the read above
		// and entering the flight.
		c.mu.RLock()
		h, ok := c.handles[modelID]
		c.mu.RUnlock()
		if ok {
			return h, nil
		}

		start := time.Now()
		slog.Info("loading model", "model", modelID)
		h, err := c.load(loadCtx, modelID)
		if err != nil {
			return nil, err
		}
		if h == nil {
			return nil, ErrNilHandle
		}

		c.mu.Lock()
		c.handles[modelID] = h
		c.mu.Unlock()
		slog.Info("model loaded", "model", modelID, "duration", time.Since(start))
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("loading model %s: %w", modelID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("loading model %s: %w", modelID, res.Err)
		}
		return res.Val.(Handle), nil
	}
}

// Preload loads every id in order and stops at the first failure.
func (c *Cache) Preload(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := c.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Loaded returns the ids currently held, sorted.
func (c *Cache) Loaded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.handles))
	for id := range c.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
