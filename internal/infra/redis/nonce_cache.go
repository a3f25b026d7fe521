package redis

import (
	"context"
	"errors"
	"time"

	"clinic-credit-service/internal/domain/ports/repository"
	"clinic-credit-service/internal/infra/metrics"
)

// Ensure compile-time conformance
var _ repository.NonceCache = (*NonceCache)(nil)

// NonceCache keeps spent nonces in Redis so replays can be rejected
// without a database round trip. Entries outlive the token expiry by a
// margin; the used_nonces table remains authoritative.
type NonceCache struct {
	client RedisClient
}

func NewNonceCache(client RedisClient) *NonceCache {
	return &NonceCache{client: client}
}

func nonceKey(nonce string) string { return "qr_nonce:" + nonce }

func (c *NonceCache) Seen(ctx context.Context, nonce string) (bool, error) {
	_, err := c.client.Get(ctx, nonceKey(nonce))
	if err != nil {
		if errors.Is(err, Nil) {
			metrics.IncCacheRequest("nonce", "miss")
			return false, nil
		}
		return false, err
	}
	metrics.IncCacheRequest("nonce", "hit")
	return true, nil
}

// Mark records the nonce as spent. SetNX keeps the first write's TTL
// when two redeemers race on the same nonce.
func (c *NonceCache) Mark(ctx context.Context, nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	_, err := c.client.SetNX(ctx, nonceKey(nonce), "1", ttl)
	return err
}
