package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dukex/n8nmigrate/pkg/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "n8nmigrate:ledger"

// RedisStore keeps one hash per instance and kind (remote id to name) plus a set of
// instances with tracked resources.
type RedisStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisStore connects to a redis:// or rediss:// URL.
func NewRedisStore(ctx context.Context, logger *slog.Logger, redisURL string) (*RedisStore, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return NewRedisStoreFromClient(ctx, logger, redis.NewClient(options))
}

// NewRedisStoreFromClient wraps an existing client after checking it is reachable.
func NewRedisStoreFromClient(ctx context.Context, logger *slog.Logger, client redis.UniversalClient) (*RedisStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

func instancesKey() string {
	return redisKeyPrefix + ":instances"
}

func resourcesKey(instance string, kind models.ResourceKind) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, kind, instance)
}

func (s *RedisStore) Record(ctx context.Context, instanceURL string, kind models.ResourceKind, id, name string) error {
	instance, err := checkArgs("record", instanceURL, kind, id)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, resourcesKey(instance, kind), id, name)
		pipe.SAdd(ctx, instancesKey(), instance)

		return nil
	})
	if err != nil {
		return &Error{Op: "record", Instance: instance, Err: err}
	}

	s.logger.DebugContext(ctx, "Recorded resource", "instance", instance, "kind", kind, "id", id, "name", name)

	return nil
}

func (s *RedisStore) Forget(ctx context.Context, instanceURL string, kind models.ResourceKind, id string) error {
	instance, err := checkArgs("forget", instanceURL, kind, id)
	if err != nil {
		return err
	}

	if err := s.client.HDel(ctx, resourcesKey(instance, kind), id).Err(); err != nil {
		return &Error{Op: "forget", Instance: instance, Err: err}
	}

	set, err := s.ListFor(ctx, instance)
	if err != nil {
		return err
	}

	if set.Empty() {
		if err := s.client.SRem(ctx, instancesKey(), instance).Err(); err != nil {
			return &Error{Op: "forget", Instance: instance, Err: err}
		}
	}

	s.logger.DebugContext(ctx, "Forgot resource", "instance", instance, "kind", kind, "id", id)

	return nil
}

func (s *RedisStore) ListFor(ctx context.Context, instanceURL string) (*models.ResourceSet, error) {
	instance := NormalizeInstance(instanceURL)
	set := models.NewResourceSet()

	for _, kind := range models.ResourceKinds {
		entries, err := s.client.HGetAll(ctx, resourcesKey(instance, kind)).Result()
		if err != nil {
			return nil, &Error{Op: "list", Instance: instance, Err: err}
		}

		for id, name := range entries {
			set.Of(kind)[id] = name
		}
	}

	return set, nil
}

func (s *RedisStore) Instances(ctx context.Context) ([]string, error) {
	instances, err := s.client.SMembers(ctx, instancesKey()).Result()
	if err != nil {
		return nil, &Error{Op: "instances", Err: err}
	}

	sort.Strings(instances)

	return instances, nil
}

func (s *RedisStore) Close(_ context.Context) error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	return nil
}
