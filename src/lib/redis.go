package lib

import (
	"clinic/src/config"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	opt, err := redis.ParseURL(config.Get().RedisHost)
	if err != nil {
		GetLogger().Error("redis: error parsing connection string", zap.Error(err))
		return nil
	}
	redisClient = redis.NewClient(opt)
	return redisClient
}

// PingRedis checks the connection once at start-up.
func PingRedis(ctx context.Context) error {
	rdb := GetRedisClient()
	if rdb == nil {
		return redis.ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
