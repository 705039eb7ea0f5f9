package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"safarsathi-service/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// expiredGrace keeps a code readable past its TTL so Consume can report it
// as expired rather than unknown.
const expiredGrace = time.Hour

// RedisCodeRepository implements the CodeRepository interface on Redis hashes
type RedisCodeRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisCodeRepository creates a new Redis-backed code repository
func NewRedisCodeRepository(client *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{
		client: client,
		now:    time.Now,
	}
}

func codeKey(email string) string {
	return fmt.Sprintf("registration_code:%s", email)
}

// Put stores code for email, replacing any previous one
func (r *RedisCodeRepository) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	key := codeKey(email)
	expiresAt := r.now().Add(ttl)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "code", code, "expiresAt", expiresAt.UnixMilli())
		pipe.Expire(ctx, key, ttl+expiredGrace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

// Consume checks and deletes the code. Concurrent consumers race on WATCH;
// only one of them succeeds.
func (r *RedisCodeRepository) Consume(ctx context.Context, email, code string) error {
	key := codeKey(email)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(values) == 0 || values["code"] != code {
			return repository.ErrInvalidCode
		}

		expiresAt, err := strconv.ParseInt(values["expiresAt"], 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt verification code entry: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}

		if r.now().After(time.UnixMilli(expiresAt)) {
			return repository.ErrCodeExpired
		}
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return repository.ErrInvalidCode
	}
	return err
}
