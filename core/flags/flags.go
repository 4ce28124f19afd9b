package flags

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"mod-builder/core/fetch"
	"mod-builder/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Config holds where remote flag overrides come from.
type Config struct {
	// URL is a mirror URL returning a JSON object of flag overrides. Empty disables remote flags.
	URL string `mapstructure:"url" default:""`
	// TTLSeconds is how long a loaded snapshot stays fresh.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"300"`
}

// Flags toggles optional pipeline behavior.
type Flags struct {
	// Patching enables the items_game patch stage.
	Patching bool `json:"patching"`
	// Auxiliary enables the auxiliary asset stage.
	Auxiliary bool `json:"auxiliary"`
	// Prettify reformats minified item data before patching.
	Prettify bool `json:"prettify"`
	// ExtractionLog enables reading and writing the extraction log.
	ExtractionLog bool `json:"extraction_log"`
}

// Defaults is the record used when no override is reachable: everything on.
func Defaults() Flags {
	return Flags{
		Patching:      true,
		Auxiliary:     true,
		Prettify:      true,
		ExtractionLog: true,
	}
}

// Merge returns f with every known key in override applied.
// Unknown keys are ignored.
func (f Flags) Merge(override map[string]any) Flags {
	for key, val := range override {
		switch key {
		case "patching":
			f.Patching = utils.ToBool(val)
		case "auxiliary":
			f.Auxiliary = utils.ToBool(val)
		case "prettify":
			f.Prettify = utils.ToBool(val)
		case "extraction_log":
			f.ExtractionLog = utils.ToBool(val)
		}
	}
	return f
}

// Source loads a flag override map.
type Source func(ctx context.Context) (map[string]any, error)

// RemoteSource loads overrides as JSON through the retrying fetcher.
func RemoteSource(fetcher *fetch.Fetcher, op fetch.Op, url string) Source {
	return func(ctx context.Context) (map[string]any, error) {
		data, err := fetcher.Fetch(ctx, []string{url}, op)
		if err != nil {
			return nil, err
		}
		var override map[string]any
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, err
		}
		return override, nil
	}
}

// loadTimeout bounds one shared load of the override.
const loadTimeout = 30 * time.Second

type snapshot struct {
	flags  Flags
	loaded time.Time
}

// Cache holds the current flag snapshot. It is owned by whoever builds the
// pipeline and passed down explicitly; there is no process-wide instance.
type Cache struct {
	source Source
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	current *snapshot
	sf      singleflight.Group
	now     func() time.Time
}

// NewCache creates a cache. A nil source always yields Defaults.
func NewCache(source Source, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{source: source, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns the cached snapshot, reloading it when missing or stale.
func (c *Cache) Get(ctx context.Context) Flags {
	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()
	if cur != nil && (c.ttl <= 0 || c.now().Sub(cur.loaded) < c.ttl) {
		return cur.flags
	}
	return c.Reload(ctx)
}

// Reload fetches the override and replaces the snapshot. Concurrent callers
// share one load, which runs detached from any single caller's context and
// is bounded by loadTimeout. An unreachable source falls back to Defaults; a
// caller whose ctx ends first gets Defaults without touching the snapshot.
func (c *Cache) Reload(ctx context.Context) Flags {
	if ctx.Err() != nil {
		return Defaults()
	}
	ch := c.sf.DoChan("flags", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		flags := Defaults()
		if c.source != nil {
			override, err := c.source(loadCtx)
			if err != nil {
				c.logger.Warn("Feature flags unreachable, using defaults", zap.Error(err))
			} else {
				flags = flags.Merge(override)
			}
		}
		c.mu.Lock()
		c.current = &snapshot{flags: flags, loaded: c.now()}
		c.mu.Unlock()
		return flags, nil
	})
	select {
	case res := <-ch:
		return res.Val.(Flags)
	case <-ctx.Done():
		return Defaults()
	}
}

// Invalidate drops the snapshot so the next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
