package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/auth"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/funds"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/history"
	httpapi "github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/http"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/markets"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/producer"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/slip"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/ws"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/cache"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/config"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/kafka"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/logger"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/metrics"
)

// sessão dura até o logout; o TTL só limpa sessões abandonadas
const sessionTTL = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "betslip-service"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Redis: sessão, cache de mercados e pub/sub do ws.
	// Em ambiente local sobe sem Redis (sessão em memória, sem cache/ws push).
	var (
		store       session.Store
		marketCache markets.Cache
		rdb         *redis.Client
	)
	rdb, err = cache.ConnectRedis(cfg.RedisAddr)
	switch {
	case err == nil:
		defer rdb.Close()
		store = session.NewRedisStore(rdb, sessionTTL)
		marketCache = markets.NewRedisCache(rdb)
		log.Info("redis connected")
	case cfg.Env == "local":
		log.Warn("redis unavailable, using in-memory session store", zap.Error(err))
		store = session.NewMemoryStore()
		rdb = nil
	default:
		log.Fatal("failed to connect redis", zap.Error(err))
	}

	// Backend remoto
	bcli := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	msrc := markets.NewSource(log, marketCache, bcli, cfg.MarketCacheTTL)

	// Kafka: trilha de auditoria dos bilhetes confirmados
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTicketConfirmed)
	defer writer.Close()
	publ := producer.NewKafkaPublisher(writer)

	// Métricas Prometheus
	added := prometheus.NewCounter(prometheus.CounterOpts{Name: "betslip_entries_added_total", Help: "entradas aceitas no bilhete"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betslip_entries_rejected_total", Help: "entradas rejeitadas por kind"}, []string{"kind"})
	confirms := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betslip_confirms_total", Help: "confirmações por resultado"}, []string{"result"})
	prometheus.MustRegister(added, rejected, confirms)

	tickets := slip.NewService(log, store, msrc, bcli, publ)
	tickets.OnAdded = func() { added.Inc() }
	tickets.OnRejected = func(kind string) { rejected.WithLabelValues(kind).Inc() }
	tickets.OnConfirm = func(result string) { confirms.WithLabelValues(result).Inc() }

	// WebSocket: snapshots publicados pelo market-sync-worker
	hub := ws.NewHub(log, allowOrigin(cfg.AllowedOrigins))
	if rdb != nil {
		ws.StartRedisSubscriber(ctx, log, rdb, cfg.RedisPubSubChannel, hub)
	}

	api := &httpapi.API{
		Log:            log,
		Tickets:        tickets,
		Markets:        msrc,
		History:        history.NewService(bcli),
		Funds:          funds.NewService(log, bcli, store),
		Auth:           auth.NewService(log, bcli, store),
		Users:          bcli,
		Store:          store,
		WS:             hub.HandleWS,
		Location:       cfg.Location(),
		AllowedOrigins: cfg.AllowedOrigins,
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, func(ctx context.Context) error {
		if rdb == nil {
			return nil
		}
		return rdb.Ping(ctx).Err()
	})

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("betslip-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("betslip-service stopped")
}

// allowOrigin libera o upgrade WS para as origens configuradas (ou todas)
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(origins) == 0 || slices.Contains(origins, "*") {
			return true
		}
		o := r.Header.Get("Origin")
		return o == "" || slices.Contains(origins, o)
	}
}
