package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"insurance-marketplace/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrMiss is returned by Get when the key does not exist or expired.
var ErrMiss = errors.New("cache: key not found")

// Store is the key/value surface the auth flows need: issued tokens,
// one-time reset/verification tokens and the session flag.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	// DeleteMatching removes every key matching a glob pattern.
	DeleteMatching(ctx context.Context, pattern string) error
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")

	return client, nil
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return s.Delete(ctx, keys...)
}

// Key layout shared by the auth use-case and middleware.

func AccessTokenKey(accountID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", accountID, tokenID)
}

func RefreshTokenKey(accountID, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%s", accountID, tokenID)
}

func PasswordResetKey(token string) string {
	return "password_reset:" + token
}

func EmailVerifyKey(token string) string {
	return "email_verify:" + token
}

// AccountTokensPattern matches every access or refresh token of an account.
func AccountTokensPattern(kind, accountID string) string {
	return fmt.Sprintf("%s_token:%s:*", kind, accountID)
}

func SessionFlagKey(accountID string) string {
	return "session:active:" + accountID
}
