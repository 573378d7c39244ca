package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const KeyPrefix = "checkpoint:"

// RedisStore keeps checkpoints as JSON strings under checkpoint:<id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// ParseRedisURL reads a redis:// or rediss:// URL. rediss keeps its TLS
// config, and user info carries the ACL username.
func ParseRedisURL(url string) (*redis.Options, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: redis url: %w", err)
	}
	return opt, nil
}

// DialRedis connects with opt and checks the connection.
func DialRedis(ctx context.Context, opt *redis.Options) (*redis.Client, error) {
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("checkpoint: redis %s: %w", opt.Addr, err)
	}
	return client, nil
}

func key(id string) string {
	return KeyPrefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (Checkpoint, error) {
	b, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Checkpoint{}, fmt.Errorf("checkpoint: load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: load %s: %w", id, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(b, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: decode %s: %w", id, err)
	}
	return cp, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, cp Checkpoint) error {
	b, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("checkpoint: encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, key(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", id, err)
	}
	return nil
}
