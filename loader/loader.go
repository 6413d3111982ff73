// ABOUTME: Stale-while-revalidate loading of remote data through the timed cache
// ABOUTME: Fresh cache hits return at once and refresh in the background; misses fetch synchronously
package loader

import (
	"context"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/roster/api"
	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/directory"
)

// Source says where a snapshot came from.
type Source int

const (
	SourceCache Source = iota
	SourceNetwork
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "network"
}

// Snapshot is one loaded value. Generation orders snapshots of the same
// loader: a consumer that already applied generation n ignores anything
// older.
type Snapshot[T any] struct {
	Value      T
	Source     Source
	Generation uint64
	StoredAt   time.Time
}

// Tokens yields the bearer token of a live session.
type Tokens interface {
	Valid(ctx context.Context) (string, error)
}

// FetchFunc retrieves the value from the backend.
type FetchFunc[T any] func(ctx context.Context, token string) (T, error)

// Loader loads one cached value.
type Loader[T any] struct {
	key    string
	maxAge time.Duration
	cache  *cache.TimedCache
	tokens Tokens
	fetch  FetchFunc[T]
	logger *log.Logger
	now    func() time.Time
	gen    atomic.Uint64
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	logger *log.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for swallowed refresh failures.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the clock stamped on network snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a loader for key with the given freshness window.
func New[T any](key string, maxAge time.Duration, tc *cache.TimedCache, tokens Tokens, fetch FetchFunc[T], opts ...Option) *Loader[T] {
	o := options{logger: log.New(io.Discard), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[T]{
		key:    key,
		maxAge: maxAge,
		cache:  tc,
		tokens: tokens,
		fetch:  fetch,
		logger: o.logger,
		now:    o.now,
	}
}

// Key returns the cache key.
func (l *Loader[T]) Key() string { return l.key }

// MaxAge returns the freshness window.
func (l *Loader[T]) MaxAge() time.Duration { return l.maxAge }

// Generation returns the newest generation handed out.
func (l *Loader[T]) Generation() uint64 { return l.gen.Load() }

// Load returns the cached value when it is fresh, together with a channel
// that receives the result of a background refresh. The channel is closed
// without a value if the refresh fails or has been superseded by a newer
// load; failures are logged, never returned. Without a fresh cache entry the
// value is fetched synchronously, cached, and returned with a nil channel.
func (l *Loader[T]) Load(ctx context.Context) (Snapshot[T], <-chan Snapshot[T], error) {
	var zero Snapshot[T]
	token, err := l.tokens.Valid(ctx)
	if err != nil {
		return zero, nil, err
	}

	gen := l.gen.Add(1)

	if snap, ok := l.fromCache(ctx, gen); ok {
		updates := make(chan Snapshot[T], 1)
		go l.refresh(ctx, token, gen, updates)
		return snap, updates, nil
	}

	snap, err := l.fromNetwork(ctx, token, gen)
	if err != nil {
		return zero, nil, err
	}
	return snap, nil, nil
}

// Get is Load without the background refresh, for callers that exit as
// soon as they have a value.
func (l *Loader[T]) Get(ctx context.Context) (Snapshot[T], error) {
	token, err := l.tokens.Valid(ctx)
	if err != nil {
		return Snapshot[T]{}, err
	}

	gen := l.gen.Add(1)
	if snap, ok := l.fromCache(ctx, gen); ok {
		return snap, nil
	}
	return l.fromNetwork(ctx, token, gen)
}

func (l *Loader[T]) fromCache(ctx context.Context, gen uint64) (Snapshot[T], bool) {
	var cached T
	if !l.cache.Fetch(ctx, l.key, l.maxAge, &cached) {
		return Snapshot[T]{}, false
	}
	storedAt, _ := l.cache.StoredAt(ctx, l.key)
	return Snapshot[T]{Value: cached, Source: SourceCache, Generation: gen, StoredAt: storedAt}, true
}

// Reload skips the cache and fetches synchronously.
func (l *Loader[T]) Reload(ctx context.Context) (Snapshot[T], error) {
	token, err := l.tokens.Valid(ctx)
	if err != nil {
		return Snapshot[T]{}, err
	}
	return l.fromNetwork(ctx, token, l.gen.Add(1))
}

// Cached returns the cached value regardless of age. An entry that no longer
// decodes is still evicted.
func (l *Loader[T]) Cached(ctx context.Context) (T, time.Time, bool) {
	var v T
	storedAt, ok := l.cache.StoredAt(ctx, l.key)
	if !ok {
		return v, time.Time{}, false
	}
	// An unlimited window reads without expiring.
	if !l.cache.Fetch(ctx, l.key, time.Duration(math.MaxInt64), &v) {
		return v, time.Time{}, false
	}
	return v, storedAt, true
}

// Invalidate drops the cached value.
func (l *Loader[T]) Invalidate(ctx context.Context) {
	l.cache.Evict(ctx, l.key)
}

func (l *Loader[T]) fromNetwork(ctx context.Context, token string, gen uint64) (Snapshot[T], error) {
	v, err := l.fetch(ctx, token)
	if err != nil {
		return Snapshot[T]{}, err
	}
	l.cache.Store(ctx, l.key, v)
	return Snapshot[T]{Value: v, Source: SourceNetwork, Generation: gen, StoredAt: l.now()}, nil
}

func (l *Loader[T]) refresh(ctx context.Context, token string, gen uint64, updates chan<- Snapshot[T]) {
	defer close(updates)

	v, err := l.fetch(ctx, token)
	if err != nil {
		l.logger.Debug("background refresh failed", "key", l.key, "err", err)
		return
	}
	if current := l.gen.Load(); current != gen {
		l.logger.Debug("discarding superseded refresh", "key", l.key, "generation", gen, "current", current)
		return
	}
	l.cache.Store(ctx, l.key, v)
	updates <- Snapshot[T]{Value: v, Source: SourceNetwork, Generation: gen, StoredAt: l.now()}
}

// StateOf maps a load error to what the screen shows.
func StateOf(err error) directory.LoadState {
	switch {
	case err == nil:
		return directory.StateReady
	case api.IsPermissionDenied(err):
		return directory.StatePermissionDenied
	case api.IsAuthError(err):
		return directory.StateUnauthorized
	default:
		return directory.StateFailed
	}
}
