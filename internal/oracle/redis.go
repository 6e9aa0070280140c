package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rxledger/internal/config"
)

// redisOracle reads role registries maintained by the external identity
// service out of Redis. Each role is a hash keyed by identity whose value is
// the party's display name, so membership and name come from a single lookup.
type redisOracle struct {
	client *redis.Client
}

// NewRedis connects to the role registry and verifies connectivity.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (Oracle, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisOracle{client: client}, nil
}

var _ Oracle = (*redisOracle)(nil)

func roleKey(role Role) string {
	return "role:" + string(role)
}

// IsAuthorized checks membership in the role hash.
func (o *redisOracle) IsAuthorized(ctx context.Context, identity string, role Role) (bool, error) {
	ok, err := o.client.HExists(ctx, roleKey(role), identity).Result()
	if err != nil {
		return false, fmt.Errorf("role lookup: %w", err)
	}
	return ok, nil
}

// DisplayName fetches the registered name; unregistered identities yield "".
func (o *redisOracle) DisplayName(ctx context.Context, identity string, role Role) (string, error) {
	name, err := o.client.HGet(ctx, roleKey(role), identity).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("display name lookup: %w", err)
	}
	return name, nil
}
