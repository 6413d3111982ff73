// ABOUTME: Best-effort JSON cache with a write timestamp and read-side freshness check
// ABOUTME: Stale or unreadable entries are evicted on read, no background sweeper needed
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
)

// TimestampSuffix is appended to a value key to form its timestamp key.
const TimestampSuffix = ".timestamp"

// TimedCache stores JSON values next to the time they were written.
// None of its methods fail the caller: store errors are logged and a failed
// read is reported as a miss.
type TimedCache struct {
	kv     KV
	logger *log.Logger
	now    func() time.Time
}

// Option configures a TimedCache.
type Option func(*TimedCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *TimedCache) { c.now = now }
}

// WithLogger sets the logger used for swallowed store errors.
func WithLogger(logger *log.Logger) Option {
	return func(c *TimedCache) { c.logger = logger }
}

// NewTimedCache wraps kv.
func NewTimedCache(kv KV, opts ...Option) *TimedCache {
	c := &TimedCache{
		kv:     kv,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TimestampKey returns the key holding the write time of key.
func TimestampKey(key string) string {
	return key + TimestampSuffix
}

// Store overwrites the entry under key with value and the current time.
func (c *TimedCache) Store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}

	pairs := map[string]string{
		key:               string(data),
		TimestampKey(key): c.now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.kv.SetMany(ctx, pairs); err != nil {
		c.logger.Warn("cache store failed", "key", key, "err", err)
	}
}

// Fetch decodes the entry under key into dst if it was written no more than
// maxAge ago. Anything else evicts the entry and reports false.
func (c *TimedCache) Fetch(ctx context.Context, key string, maxAge time.Duration, dst any) bool {
	tsKey := TimestampKey(key)
	values, err := c.kv.GetMany(ctx, key, tsKey)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}

	payload, okPayload := values[key]
	stamp, okStamp := values[tsKey]
	if !okPayload || !okStamp || payload == "" || stamp == "" {
		if okPayload || okStamp {
			c.Evict(ctx, key)
		}
		return false
	}

	if err := c.check(payload, stamp, maxAge, dst); err != nil {
		c.logger.Debug("cache entry dropped", "key", key, "reason", err)
		c.Evict(ctx, key)
		return false
	}
	return true
}

func (c *TimedCache) check(payload, stamp string, maxAge time.Duration, dst any) error {
	storedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return fmt.Errorf("bad timestamp: %w", err)
	}
	if age := c.now().Sub(storedAt); age > maxAge {
		return fmt.Errorf("expired: age %s exceeds %s", age, maxAge)
	}
	return decodeInto(payload, dst)
}

// decodeInto decodes payload into a fresh value and copies it to dst only on
// success, so a failed decode leaves dst untouched.
func decodeInto(payload string, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("bad destination: %T", dst)
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal([]byte(payload), fresh.Interface()); err != nil {
		return fmt.Errorf("bad payload: %w", err)
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// StoredAt reports when the entry under key was written, without judging
// freshness.
func (c *TimedCache) StoredAt(ctx context.Context, key string) (time.Time, bool) {
	stamp, err := c.kv.Get(ctx, TimestampKey(key))
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Evict removes the entry under key. Missing keys are not an error.
func (c *TimedCache) Evict(ctx context.Context, key string) {
	if err := c.kv.RemoveMany(ctx, key, TimestampKey(key)); err != nil {
		c.logger.Warn("cache evict failed", "key", key, "err", err)
	}
}
