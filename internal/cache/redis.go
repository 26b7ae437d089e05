package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Cache key formats
const (
	BalanceKeyFmt = "till:balance:%d"

	// OrderEventsChannel carries order lifecycle events for the kitchen board
	OrderEventsChannel = "orders:events"
)

var client *redis.Client

// Init initializes the Redis connection. The server keeps working without
// Redis; callers must tolerate a nil client (graceful degradation).
func Init() error {
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client, or nil when Redis is unavailable
func GetClient() *redis.Client {
	return client
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// ============================================
// Auth Credential Cache
// ============================================

// hashCredentials creates a hash of email+password for cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	key := hashCredentials(email, password)
	userID, err := client.Get(ctx, key).Int64()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int64) {
	if client == nil {
		return
	}
	key := hashCredentials(email, password)
	client.Set(ctx, key, userID, 15*time.Minute)
}

// InvalidateAuth removes cached auth for a user (on password change/logout)
func InvalidateAuth(ctx context.Context, email, password string) {
	if client == nil {
		return
	}
	key := hashCredentials(email, password)
	client.Del(ctx, key)
}

// ============================================
// Till Balance Cache
// ============================================

// TillBalanceCache caches ledger-derived expected balances keyed by register
// id. Entries are explicitly invalidated whenever the ledger changes, so a
// short TTL is only a safety net against missed invalidations.
type TillBalanceCache struct {
	ttl time.Duration
}

func NewTillBalanceCache() *TillBalanceCache {
	return &TillBalanceCache{ttl: 5 * time.Minute}
}

func (c *TillBalanceCache) GetBalance(ctx context.Context, registerID int) (decimal.Decimal, bool) {
	if client == nil {
		return decimal.Zero, false
	}
	key := fmt.Sprintf(BalanceKeyFmt, registerID)
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return balance, true
}

func (c *TillBalanceCache) SetBalance(ctx context.Context, registerID int, balance decimal.Decimal) {
	if client == nil {
		return
	}
	key := fmt.Sprintf(BalanceKeyFmt, registerID)
	client.Set(ctx, key, balance.String(), c.ttl)
}

func (c *TillBalanceCache) InvalidateBalance(ctx context.Context, registerID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(BalanceKeyFmt, registerID))
}

// ============================================
// Order Event Pub/Sub
// ============================================

// Publish sends a payload to a channel. A nil client drops the event; the
// order board is a convenience surface, not a system of record.
func Publish(ctx context.Context, channel string, payload []byte) error {
	if client == nil {
		return nil
	}
	return client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a subscription on a channel. Returns nil when Redis is
// unavailable.
func Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if client == nil {
		return nil
	}
	return client.Subscribe(ctx, channel)
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}
