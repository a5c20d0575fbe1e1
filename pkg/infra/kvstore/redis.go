package kvstore

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const metadataKeySuffix = ":meta"

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient connects to redis and verifies the connection before
// returning the client.
func NewRedisClient(config Config, logger *logrus.Logger) (*redis.Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return client, nil
}

// redisStore implements the backing-store contract on redis: the value
// lives at the key itself, metadata in a hash at <key>:meta. All calls
// pass through a circuit breaker so a degraded redis surfaces quickly
// as a store error instead of piling up slow requests.
type redisStore struct {
	client  *redis.Client
	logger  *logrus.Logger
	breaker CircuitBreaker
}

func NewRedisStore(client *redis.Client, logger *logrus.Logger, breaker CircuitBreaker) Store {
	if breaker == nil {
		breaker = NewNoopCircuitBreaker()
	}
	return &redisStore{
		client:  client,
		logger:  logger,
		breaker: breaker,
	}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var found bool
	err := s.breaker.Execute(func() error {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		value = data
		found = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *redisStore) GetWithMetadata(ctx context.Context, key string) ([]byte, Metadata, error) {
	var value []byte
	var found bool
	var meta map[string]string
	err := s.breaker.Execute(func() error {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		value = data
		found = true

		meta, err = s.client.HGetAll(ctx, key+metadataKeySuffix).Result()
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kvstore: get with metadata %q: %w", key, err)
	}
	if !found {
		return nil, nil, ErrNotFound
	}
	return value, Metadata(meta), nil
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte, metadata Metadata) error {
	err := s.breaker.Execute(func() error {
		pipe := s.client.TxPipeline()
		pipe.Set(ctx, key, value, 0)
		pipe.Del(ctx, key+metadataKeySuffix)
		if len(metadata) > 0 {
			pipe.HSet(ctx, key+metadataKeySuffix, flattenMetadata(metadata)...)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to write key")
		return fmt.Errorf("kvstore: put %q: %w", key, err)
	}
	return nil
}

// flattenMetadata produces a deterministic field/value argument list
// for HSET. Map iteration order would otherwise vary per call.
func flattenMetadata(metadata Metadata) []interface{} {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]interface{}, 0, len(metadata)*2)
	for _, k := range keys {
		args = append(args, k, metadata[k])
	}
	return args
}
