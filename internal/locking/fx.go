package locking

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/suitedesk/suitedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRedisClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, generation lock falls back to in-process mutex")
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

var Module = fx.Module("locking",
	fx.Provide(
		newRedisClient,
		NewLocker,
	),
)
