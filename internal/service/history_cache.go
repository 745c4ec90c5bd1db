package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalia-go-api/internal/dto"
)

// HistoryCache keeps per-student submission history in Redis. All methods
// are nil-safe so the cache can be left unconfigured in tests and small
// deployments.
type HistoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewHistoryCache builds the cache wrapper.
func NewHistoryCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *HistoryCache {
	return &HistoryCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "history_cache").Logger(),
	}
}

func historyCacheKey(studentID uint) string {
	return fmt.Sprintf("history:student:%d", studentID)
}

// Get returns the cached history for a student, reporting a miss otherwise.
func (c *HistoryCache) Get(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, historyCacheKey(studentID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read history cache")
		}
		return nil, false
	}

	var history []dto.SubmissionResponse
	if err := json.Unmarshal([]byte(cached), &history); err != nil {
		return nil, false
	}

	c.logger.Debug().Uint("student_id", studentID).Msg("history cache hit")
	return history, true
}

// Set stores the history for a student with the configured TTL.
func (c *HistoryCache) Set(ctx context.Context, studentID uint, history []dto.SubmissionResponse) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, historyCacheKey(studentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store history cache")
	}
}

// Invalidate drops the cached history after a submit or grade changes it.
func (c *HistoryCache) Invalidate(ctx context.Context, studentID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, historyCacheKey(studentID)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate history cache")
	}
}
