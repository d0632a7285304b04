package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/config"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/db"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/kafka"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/logger"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/metrics"
	"github.com/sourabh07032000/kalyan-userside-app/internal/ticket-audit/consumer"
	"github.com/sourabh07032000/kalyan-userside-app/internal/ticket-audit/repository"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ticket-audit-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Postgres: trilha de auditoria
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewPostgresRepo(pg)
	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureSchema(schemaCtx); err != nil {
		schemaCancel()
		log.Fatal("ensure schema", zap.Error(err))
	}
	schemaCancel()

	// Kafka consumer (consumer group ticket-audit) e DLQ
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicTicketConfirmed, "ticket-audit")
	defer reader.Close()

	var dlq consumer.Writer
	if cfg.TopicTicketConfirmedDLQ != "" {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTicketConfirmedDLQ)
		defer w.Close()
		dlq = w
	}

	// Métricas Prometheus
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "ticket_audit_messages_consumed_total", Help: "mensagens consumidas"})
	recorded := prometheus.NewCounter(prometheus.CounterOpts{Name: "ticket_audit_records_total", Help: "bilhetes gravados"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "ticket_audit_duplicates_total", Help: "reentregas ignoradas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ticket_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, recorded, duplicates, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repo,
		DLQ:         dlq,
		Retries:     3,
		OnConsumed:  func() { consumed.Inc() },
		OnRecorded:  func() { recorded.Inc() },
		OnDuplicate: func() { duplicates.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, pg.PingContext)

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ticket-audit started",
		zap.String("consume", cfg.TopicTicketConfirmed),
		zap.String("dlq", cfg.TopicTicketConfirmedDLQ),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("ticket-audit stopped")
}
