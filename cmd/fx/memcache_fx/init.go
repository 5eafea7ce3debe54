package memcache_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"deseos/internal/config"
	"deseos/internal/infra"
	mem "deseos/pkg/memcache"
)

const sweepInterval = 5 * time.Minute

var Module = fx.Provide(provideTokenStore)

// provideTokenStore backs reset, CSRF and flash tokens with Redis when REDIS_URL is set, and with
// process memory otherwise.
func provideTokenStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (mem.TokenStore, error) {
	if cfg.RedisURL != "" {
		client, err := infra.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		log.Info("token store: redis")
		return mem.NewRedisTokens(client), nil
	}

	store := mem.NewMemoryTokens()
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if n := store.Sweep(); n > 0 {
							log.Debug("swept expired tokens", zap.Int("count", n))
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
	log.Info("token store: memory")
	return store, nil
}
