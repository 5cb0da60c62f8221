package main

import (
	"context"
	"fmt"
	"time"

	"medipay/internal/config"
	"medipay/internal/handlers"
	"medipay/internal/logger"
	"medipay/internal/repositories"
	"medipay/internal/repositories/cache"
	"medipay/internal/repositories/memstore"
	"medipay/internal/services/hospital"
	"medipay/internal/services/notification"
	"medipay/internal/services/payment"
	"medipay/internal/services/payout"
	"medipay/internal/services/referral"
	"medipay/internal/services/wallet"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// runtime is the wired dependency graph shared by every subcommand.
type runtime struct {
	cfg   *config.Config
	log   zerolog.Logger
	db    *gorm.DB
	store repositories.Store
	rdb   *redis.Client
	cache *cache.CacheService

	hospitals *hospital.Service
	wallets   wallet.Service
	referrals referral.Service
	payouts   payout.Service
	notifier  *notification.Async
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.Setup(cfg.Env, cfg.LogLevel), nil
}

// openStore connects the configured store. The memory store exists for
// local development and is empty on every start.
func openStore(cfg *config.Config, log zerolog.Logger) (repositories.Store, *gorm.DB, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memstore.New(), nil, nil
	case "postgres", "":
		db, err := repositories.InitDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewStore(db), db, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// openCache returns nil when Redis is not configured or unreachable; the
// service runs without a balance cache in that case.
func openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, *cache.CacheService) {
	if cfg.RedisHost == "" {
		return nil, nil
	}
	rdb := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	svc := cache.NewCacheService(rdb, cfg.BalanceCacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := svc.HealthCheck(pingCtx); err != nil {
		log.Warn().Err(err).Str("host", cfg.RedisHost).Msg("redis unavailable, running without cache")
		_ = rdb.Close()
		return nil, nil
	}
	log.Info().Str("host", cfg.RedisHost).Msg("redis connected")
	return rdb, svc
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, db, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: log, db: db, store: store}
	rt.rdb, rt.cache = openCache(ctx, cfg, log)

	var balanceCache wallet.BalanceCache
	if rt.cache != nil {
		balanceCache = rt.cache
	}
	rt.wallets = wallet.NewService(store, balanceCache, wallet.Config{
		Currency: cfg.Currency,
		CacheTTL: cfg.BalanceCacheTTL,
	}, nil, log)

	var deliver notification.Notifier = notification.NewLogNotifier(log)
	if rt.rdb != nil {
		deliver = notification.NewRedisPublisher(rt.rdb)
	}
	rt.notifier = notification.NewAsync(deliver, log, 5*time.Second)

	gateway, err := payment.NewGateway(cfg)
	if err != nil {
		rt.close()
		return nil, err
	}
	referralFee, platformFee, err := cfg.Fees()
	if err != nil {
		rt.close()
		return nil, err
	}

	rt.hospitals = hospital.NewService(store.Hospitals())
	rt.referrals = referral.NewService(referral.Deps{
		Store:     store,
		Ledger:    rt.wallets,
		Gateway:   gateway,
		Directory: rt.hospitals,
		Capacity:  rt.hospitals,
		Notifier:  rt.notifier,
		Log:       log,
	}, referral.Config{
		ReferralFee: referralFee,
		PlatformFee: platformFee,
		Currency:    cfg.Currency,
	})
	rt.payouts = payout.NewService(store, rt.wallets, rt.notifier, payout.Config{
		Minimum: cfg.MinimumPayout(),
	}, log)

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("payment_provider", gateway.Name()).
		Bool("cache", rt.cache != nil).
		Msg("dependencies ready")
	return rt, nil
}

// healthChecks lists the dependencies reported by GET /health.
func (rt *runtime) healthChecks() map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if rt.db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := rt.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rt.cache != nil {
		checks["redis"] = rt.cache.HealthCheck
	}
	return checks
}

func (rt *runtime) close() {
	if rt.notifier != nil {
		rt.notifier.Wait()
	}
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			rt.log.Warn().Err(err).Msg("failed to close redis connection")
		}
	}
	if rt.db != nil {
		if err := repositories.Close(rt.db); err != nil {
			rt.log.Warn().Err(err).Msg("failed to close database connection")
		}
	}
}
