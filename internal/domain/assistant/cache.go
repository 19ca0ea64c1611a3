package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "giftledger:analysis:"

// CachedRemote keeps usable remote answers in Redis so a repeated message
// does not spend another remote call. Keys include the calendar day
// because answers hold resolved relative dates.
type CachedRemote struct {
	next   RemoteAnalyzer
	rdb    *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCachedRemote wraps next with a Redis cache of the given ttl.
func NewCachedRemote(next RemoteAnalyzer, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRemote {
	return &CachedRemote{next: next, rdb: rdb, ttl: ttl, now: time.Now, logger: logger}
}

// Analyze implements RemoteAnalyzer. Cache failures are logged and never
// fail the call.
func (c *CachedRemote) Analyze(ctx context.Context, text string, hints Hints) (*RemoteResponse, error) {
	key := c.key(text, hints)

	if val, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var resp RemoteResponse
		if err := json.Unmarshal([]byte(val), &resp); err == nil {
			return &resp, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("analysis cache read failed", slog.Any("error", err))
	}

	resp, err := c.next.Analyze(ctx, text, hints)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.OK || resp.Data == nil {
		return resp, nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return resp, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("analysis cache write failed", slog.Any("error", err))
	}
	return resp, nil
}

func (c *CachedRemote) key(text string, hints Hints) string {
	payload, _ := json.Marshal(remoteRequest{Text: text, Hints: hints})
	sum := sha256.Sum256(payload)
	return cacheKeyPrefix + c.now().Format("2006-01-02") + ":" + hex.EncodeToString(sum[:])
}
