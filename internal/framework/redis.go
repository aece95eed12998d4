package framework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/internal/config"
)

// RedisStore keeps the document as JSON under a single key, so several
// server instances share one framework. Saves use WATCH/MULTI, which makes
// the version check hold across processes.
type RedisStore struct {
	client   *redis.Client
	key      string
	defaults *Framework
	logger   *zap.Logger
	now      func() time.Time
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisStore(client *redis.Client, key string, defaults *Framework, logger *zap.Logger) *RedisStore {
	if defaults == nil {
		defaults = Default()
	}
	return &RedisStore{
		client:   client,
		key:      key,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// Ping tests the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context) (*Framework, error) {
	return s.read(ctx, s.client)
}

func (s *RedisStore) Save(ctx context.Context, f *Framework) (*Framework, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	return s.swap(ctx, func(current *Framework) (*Framework, error) {
		if f.Version != current.Version {
			return nil, fmt.Errorf("%w: have version %d, stored version is %d", ErrVersionConflict, f.Version, current.Version)
		}
		return f, nil
	})
}

func (s *RedisStore) Reset(ctx context.Context) (*Framework, error) {
	return s.swap(ctx, func(*Framework) (*Framework, error) {
		return s.defaults, nil
	})
}

// swap reads the current document inside a WATCH, lets choose pick the
// replacement and writes it in a MULTI block. A concurrent write between the
// read and the EXEC aborts the transaction and surfaces as a conflict.
func (s *RedisStore) swap(ctx context.Context, choose func(current *Framework) (*Framework, error)) (*Framework, error) {
	var next *Framework
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		replacement, err := choose(current)
		if err != nil {
			return err
		}

		next = stamp(replacement, current, s.now())
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode framework: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}, s.key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("%w: document changed during save", ErrVersionConflict)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Framework saved", zap.String("key", s.key), zap.Int64("version", next.Version))
	return next.Clone(), nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c getter) (*Framework, error) {
	data, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		f := s.defaults.Clone()
		f.Version = 0
		f.UpdatedAt = time.Time{}
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read framework: %w", err)
	}

	var f Framework
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode framework: %w", err)
	}
	return &f, nil
}
