package valhalla

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbendaoud/fretplan-go/internal/adapters/metrics"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

const (
	matrixKeyPrefix = "fretplan:matrix:"

	// DefaultMatrixTTL bounds the staleness of cached road distances
	DefaultMatrixTTL = 12 * time.Hour
)

// CachedProvider decorates a routing.Provider with a Redis matrix cache.
// Only authoritative engine answers are cached; haversine fallbacks are
// recomputed on every call so a recovered engine wins immediately.
type CachedProvider struct {
	inner routing.Provider
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedProvider creates a matrix cache in front of the given provider
func NewCachedProvider(inner routing.Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultMatrixTTL
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

// Route passes through, point-to-point legs are not worth caching
func (c *CachedProvider) Route(ctx context.Context, from, to shared.GeoPoint, departAt *time.Time) (*routing.RouteResult, error) {
	return c.inner.Route(ctx, from, to, departAt)
}

// Matrix answers from the cache when the exact point list was seen before
func (c *CachedProvider) Matrix(ctx context.Context, points []shared.GeoPoint) (*routing.MatrixResult, error) {
	if len(points) == 0 {
		return c.inner.Matrix(ctx, points)
	}

	key := matrixKey(points)

	// Any Redis error counts as a miss, the cache is best effort
	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached routing.MatrixResult
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil && cached.Size() == len(points) {
			metrics.RecordMatrixCacheLookup(true)
			return &cached, nil
		}
	}
	metrics.RecordMatrixCacheLookup(false)

	result, err := c.inner.Matrix(ctx, points)
	if err != nil {
		return nil, err
	}

	if result.OK && !result.FallbackUsed {
		if data, jsonErr := json.Marshal(result); jsonErr == nil {
			c.rdb.Set(ctx, key, data, c.ttl)
		}
	}

	return result, nil
}

// matrixKey digests the ordered point list into a stable cache key
func matrixKey(points []shared.GeoPoint) string {
	var sb strings.Builder
	for _, p := range points {
		sb.WriteString(p.Key())
		sb.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return matrixKeyPrefix + hex.EncodeToString(sum[:])
}
