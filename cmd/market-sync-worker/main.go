package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/market-sync/cache"
	"github.com/sourabh07032000/kalyan-userside-app/internal/market-sync/poller"
	"github.com/sourabh07032000/kalyan-userside-app/internal/market-sync/pubsub"
	sharedcache "github.com/sourabh07032000/kalyan-userside-app/internal/shared/cache"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/config"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/logger"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "market-sync-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Métricas Prometheus da coleta
	fetches := prometheus.NewCounter(prometheus.CounterOpts{Name: "market_sync_fetches_total", Help: "coletas bem-sucedidas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "market_sync_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(fetches, errorsBy)

	p := &poller.Poller{
		Log:         log,
		Fetcher:     backend.New(cfg.BackendURL, cfg.BackendTimeout),
		Cache:       cache.NewRedisCache(redisClient, cfg.MarketCacheTTL),
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		Interval:    cfg.MarketPollInterval,
		Location:    cfg.Location(),
		OnFetched:   func() { fetches.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("market-sync started",
		zap.Duration("interval", cfg.MarketPollInterval),
		zap.String("channel", cfg.RedisPubSubChannel),
	)
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("poller stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("market-sync stopped")
}
