// Command queryguard serves the query safety gate and the attack analytics assistant over HTTP.
//
// Configuration is read from QUERYGUARD_* environment variables, see package config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/omniql-engine/queryguard"
	"github.com/omniql-engine/queryguard/audit"
	"github.com/omniql-engine/queryguard/capability"
	"github.com/omniql-engine/queryguard/config"
	"github.com/omniql-engine/queryguard/engine/analytics"
	"github.com/omniql-engine/queryguard/engine/gate"
	"github.com/omniql-engine/queryguard/logging"
	"github.com/omniql-engine/queryguard/metrics"
	"github.com/omniql-engine/queryguard/server"
)

const service = "QUERYGUARD"

func main() {
	logcfg, err := logging.LoadConfig(service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading log config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Configure(logcfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuring logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("queryguard stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(service)
	if err != nil {
		return err
	}
	log := slog.Default()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connecting to mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn("disconnecting from mongo", "error", err)
		}
	}()
	db := client.Database(cfg.MongoDB)

	auditLog, closeLog, err := openAuditLog(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeLog()

	gemini := capability.NewGemini(capability.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.CapabilityTimeout,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(registry)

	g := gate.New(capability.Sampled("classify_query", gemini), auditLog, queryguard.WrapMongo(db))
	r := analytics.New(
		capability.Sampled("classify_question", gemini),
		capability.SampledSummarizer("summarize", gemini),
		auditLog)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(g, r, auditLog, server.WithGatherer(registry)),
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("listening", "addr", cfg.Addr, "audit_backend", cfg.AuditBackend, "model", cfg.GeminiModel)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func openAuditLog(ctx context.Context, cfg config.Config, db *mongo.Database) (audit.Log, func(), error) {
	switch cfg.AuditBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return audit.NewRedis(rdb), func() { _ = rdb.Close() }, nil
	default:
		return audit.NewMongo(db), func() {}, nil
	}
}
