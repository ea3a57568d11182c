package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medisight/medisight-go/internal/models"
)

// SuggestionCacheEntry represents a cached suggestion set with metadata
type SuggestionCacheEntry struct {
	Suggestions []models.DiagnosisSuggestion `json:"suggestions"`
	CachedAt    time.Time                    `json:"cached_at"`
	ExpiresAt   time.Time                    `json:"expires_at"`
}

// SuggestionCacheStats tracks cache performance metrics
type SuggestionCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisSuggestionCache caches scored suggestion sets keyed by the sorted
// symptom-id set. Only pure symptom queries are cached; vitals and patient
// history make results request-specific.
type RedisSuggestionCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *SuggestionCacheStats
	logger *logrus.Logger
	prefix string
}

// NewRedisSuggestionCache creates a new Redis-based suggestion cache
func NewRedisSuggestionCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisSuggestionCache {
	return &RedisSuggestionCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &SuggestionCacheStats{},
		logger: logger,
		prefix: "diagnosis_cache:",
	}
}

// cacheKey derives a deterministic key from the symptom set, independent of
// the order the symptoms were selected in.
func (c *RedisSuggestionCache) cacheKey(symptomIDs []int64) string {
	ids := append([]int64(nil), symptomIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return c.prefix + strings.Join(parts, ",")
}

// Get retrieves a cached suggestion set for a symptom set
func (c *RedisSuggestionCache) Get(ctx context.Context, symptomIDs []int64) ([]models.DiagnosisSuggestion, bool) {
	key := c.cacheKey(symptomIDs)

	data, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("Redis error reading suggestion cache")
		c.miss()
		return nil, false
	}

	var entry SuggestionCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).Warn("Error deserializing cached suggestions")
		c.miss()
		return nil, false
	}

	// Check if entry has expired (additional check beyond Redis TTL)
	if time.Now().After(entry.ExpiresAt) {
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return entry.Suggestions, true
}

// Set stores a suggestion set for a symptom set
func (c *RedisSuggestionCache) Set(ctx context.Context, symptomIDs []int64, suggestions []models.DiagnosisSuggestion) {
	entry := SuggestionCacheEntry{
		Suggestions: suggestions,
		CachedAt:    time.Now(),
		ExpiresAt:   time.Now().Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).Warn("Error serializing suggestions for cache")
		return
	}

	if err := c.redis.Set(ctx, c.cacheKey(symptomIDs), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Redis error writing suggestion cache")
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Stats returns a snapshot of cache performance counters
func (c *RedisSuggestionCache) Stats() (hits, misses, sets int64) {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return c.stats.Hits, c.stats.Misses, c.stats.Sets
}

func (c *RedisSuggestionCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
