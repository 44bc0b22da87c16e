package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/CollinsRutto/realtorgpt/internal/database"
	logpkg "github.com/CollinsRutto/realtorgpt/internal/logger"
	"github.com/CollinsRutto/realtorgpt/internal/models"
	"github.com/CollinsRutto/realtorgpt/internal/request"
)

const (
	// DefaultDailyQuota is the number of chat requests an anonymous
	// visitor gets per UTC day.
	DefaultDailyQuota = 4

	// QuotaExceededMessage is the fixed response body message returned
	// when an anonymous visitor runs out of daily chat requests.
	QuotaExceededMessage = "Loving our research? Please sign in to continue & access more value."

	// quotaKeyTTL keeps counters around past the day boundary so a key
	// created late in the day still expires on its own.
	quotaKeyTTL = 48 * time.Hour
)

// QuotaStore tracks per-key daily usage counts.
type QuotaStore interface {
	// Count returns the current counter value for key (0 when absent).
	Count(ctx context.Context, key string) (int64, error)
	// Incr increments the counter for key, setting ttl on first use.
	Incr(ctx context.Context, key string, ttl time.Duration) error
}

// RedisQuotaStore implements QuotaStore on a Redis client.
type RedisQuotaStore struct {
	client *redis.Client
}

// NewRedisQuotaStore creates a Redis-backed quota store.
func NewRedisQuotaStore(client *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{client: client}
}

// Count returns the current counter value for key.
func (s *RedisQuotaStore) Count(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota count: %w", err)
	}
	return val, nil
}

// Incr increments the counter and sets the TTL when the key is new.
func (s *RedisQuotaStore) Incr(ctx context.Context, key string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("quota incr: %w", err)
	}
	return nil
}

// ChatQuota enforces the anonymous daily chat quota. Authenticated users
// pass through untouched. Anonymous visitors are counted per client IP per
// UTC day; once the limit is reached they get 429 with a fixed message.
// Store failures admit the request rather than blocking it.
type ChatQuota struct {
	store QuotaStore
	repo  database.QuotaConfigRepositoryInterface
	log   *zap.Logger

	limit    atomic.Int64
	interval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewChatQuota creates the quota middleware. The limit starts at
// DefaultDailyQuota and follows the database config once Start runs.
func NewChatQuota(store QuotaStore, repo database.QuotaConfigRepositoryInterface, log *zap.Logger, reloadInterval time.Duration) *ChatQuota {
	q := &ChatQuota{
		store:    store,
		repo:     repo,
		log:      log,
		interval: reloadInterval,
		now:      time.Now,
	}
	q.limit.Store(DefaultDailyQuota)
	return q
}

// Limit returns the currently effective daily limit.
func (q *ChatQuota) Limit() int64 {
	return q.limit.Load()
}

// Start loads the configured limit and keeps reloading it until ctx is
// cancelled. Call after wiring the middleware.
func (q *ChatQuota) Start(ctx context.Context) {
	q.load(ctx)
	if q.interval <= 0 {
		return
	}
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.load(ctx)
		}
	}
}

func (q *ChatQuota) load(ctx context.Context) {
	if q.repo == nil {
		return
	}
	cfg, err := q.repo.Get(ctx)
	if err != nil {
		q.log.Warn("failed_to_load_quota_config_from_db_using_current",
			zap.Error(err),
			zap.Int64("current_limit", q.limit.Load()),
		)
		return
	}
	if cfg == nil {
		// Save default config if none exists
		if err := q.repo.Set(ctx, &models.QuotaConfig{DailyLimit: DefaultDailyQuota}); err != nil {
			q.log.Error("failed_to_save_default_quota_config", zap.Error(err))
		}
		return
	}
	if cfg.DailyLimit > 0 {
		q.limit.Store(int64(cfg.DailyLimit))
	}
}

// Key builds the per-IP daily counter key for the given moment.
func (q *ChatQuota) Key(ip string, at time.Time) string {
	return fmt.Sprintf("chat_quota:%s:%s", ip, at.UTC().Format("2006-01-02"))
}

// Middleware returns the quota-enforcing middleware. It must run after
// OptionalAuth so authenticated users are visible in the request context.
func (q *ChatQuota) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Signed-in users are not metered against the daily quota.
			if request.UserFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := request.ClientIP(r)
			if ip == request.UnknownIP {
				q.log.Warn("quota_client_ip_unknown",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := q.Key(ip, q.now())
			count, err := q.store.Count(ctx, key)
			if err != nil {
				// Fail open: a broken quota store must not take chat down.
				q.log.Warn("quota_store_unavailable_admitting_request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if count >= q.limit.Load() {
				respondErrorJSON(w, http.StatusTooManyRequests, QuotaExceededMessage, q.log)
				return
			}

			if err := q.store.Incr(ctx, key, quotaKeyTTL); err != nil {
				q.log.Warn("quota_incr_failed_admitting_request", zap.Error(err))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewRedisClient parses a Redis URL and returns a connected client after
// verifying the connection with a short ping.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
