package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"last30days/internal/model"
)

const defaultOpTimeout = 2 * time.Second

// RedisStore keeps reports in Redis with a server-side TTL. It satisfies
// cache.ReportStore.
type RedisStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	now     func() time.Time
	timeout time.Duration
	log     *slog.Logger
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now, timeout: defaultOpTimeout, log: slog.Default()}
}

// WithClock replaces the clock used for saved_at and age.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s.now = now
	return s
}

func (s *RedisStore) WithLogger(l *slog.Logger) *RedisStore {
	if l != nil {
		s.log = l
	}
	return s
}

func reportKey(key string) string {
	return fmt.Sprintf("last30days:report:%s", key)
}

type envelope struct {
	SavedAt string          `json:"saved_at"`
	Report  json.RawMessage `json:"report"`
}

// LoadReport returns the stored report and its age in hours. Any Redis or
// decode failure is a miss.
func (s *RedisStore) LoadReport(key string) (*model.Report, float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	b, err := s.rdb.Get(ctx, reportKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("redis: load report failed", "key", key, "err", err)
		}
		return nil, 0, false
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		s.log.Debug("redis: decode envelope failed", "key", key, "err", err)
		return nil, 0, false
	}
	saved, err := time.Parse(time.RFC3339Nano, env.SavedAt)
	if err != nil {
		return nil, 0, false
	}
	age := s.now().Sub(saved)
	if age >= s.ttl {
		return nil, 0, false
	}
	r, err := model.DecodeReport(env.Report)
	if err != nil {
		s.log.Debug("redis: decode report failed", "key", key, "err", err)
		return nil, 0, false
	}
	return r, age.Hours(), true
}

// SaveReport stores the report, expiring after the store TTL.
func (s *RedisStore) SaveReport(key string, r *model.Report) error {
	rb, err := r.Encode()
	if err != nil {
		return err
	}
	b, err := json.Marshal(envelope{SavedAt: s.now().UTC().Format(time.RFC3339Nano), Report: rb})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.rdb.Set(ctx, reportKey(key), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes every stored report and returns how many were removed.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	n := 0
	iter := s.rdb.Scan(ctx, 0, reportKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Err()
}
