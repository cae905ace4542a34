package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

const cacheNamespace = "gym-schedule"

// CacheStore abstracts the key-value store behind cached session listings.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// CacheService wraps a CacheStore with namespacing, metrics and a kill switch.
// A disabled or failing cache never fails the caller's read path.
type CacheService struct {
	store      CacheStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(store CacheStore, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

// Key joins parts under the service namespace, e.g. gym-schedule:sessions:<class>.
func (s *CacheService) Key(parts ...string) string {
	return cacheNamespace + ":" + strings.Join(parts, ":")
}

// Get loads a cached entry into dest and reports whether it was a hit. Store failures count
// as misses.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.store.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.store.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes the key built from parts and every key nested below it. Sibling keys
// sharing a textual prefix (class-1 and class-10) are left alone.
func (s *CacheService) Invalidate(ctx context.Context, parts ...string) error {
	if !s.Enabled() {
		return nil
	}
	base := escapeGlob(s.Key(parts...))
	for _, pattern := range []string{base, base + ":*"} {
		if err := s.deletePattern(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}

// Generation reads the counter stamped into keys under parts. The second return is false
// when the counter cannot be read; callers should bypass the cache in that case.
func (s *CacheService) Generation(ctx context.Context, parts ...string) (int64, bool) {
	if !s.Enabled() {
		return 0, false
	}
	var gen int64
	err := s.store.Get(ctx, s.generationKey(parts...), &gen)
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, appErrors.ErrCacheMiss):
		return 0, true
	default:
		s.logger.Warn("cache generation unavailable", zap.Strings("parts", parts), zap.Error(err))
		return 0, false
	}
}

// Bump advances the generation under parts so entries written for earlier generations are
// never read again. They expire with their TTL.
func (s *CacheService) Bump(ctx context.Context, parts ...string) error {
	if !s.Enabled() {
		return nil
	}
	key := s.generationKey(parts...)
	if _, err := s.store.Incr(ctx, key); err != nil {
		s.logger.Warn("cache generation bump failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("bump %s: %w", key, err)
	}
	return nil
}

func (s *CacheService) generationKey(parts ...string) string {
	return s.Key(append([]string{"gen"}, parts...)...)
}

func (s *CacheService) deletePattern(ctx context.Context, pattern string) error {
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return fmt.Errorf("invalidate %s: %w", pattern, err)
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func escapeGlob(key string) string {
	return globEscaper.Replace(key)
}
