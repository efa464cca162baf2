//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=redis_test
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}
