package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bagdasarian/pr-insight/internal/agent"
	"github.com/bagdasarian/pr-insight/internal/config"
	"github.com/bagdasarian/pr-insight/internal/db"
	"github.com/bagdasarian/pr-insight/internal/handler"
	"github.com/bagdasarian/pr-insight/internal/handler/server"
	"github.com/bagdasarian/pr-insight/internal/repository/postgres"
	"github.com/bagdasarian/pr-insight/internal/service"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := config.Load()

	database := db.MustLoad(cfg)
	defer database.Close()
	log.Info("connected to database")

	if err := db.Migrate(database, "migrations"); err != nil {
		log.Fatalw("migrations failed", "error", err)
	}

	pullRequestRepo := postgres.NewPullRequestRepository(database)
	analysisRepo := postgres.NewAnalysisRepository(database)
	commentRepo := postgres.NewCommentRepository(database)
	policyRepo := postgres.NewPolicyRepository(database)
	metricsRepo := postgres.NewMetricsRepository(database)

	agentClient := agent.NewClient(cfg.Agent, log)

	commentService := service.NewCommentService(commentRepo, analysisRepo, pullRequestRepo, policyRepo, cfg.Metrics, log)
	analysisService := service.NewAnalysisService(analysisRepo, commentService, agentClient, cfg.Analysis.MaxDuration, log)
	eventService := service.NewEventService(pullRequestRepo, policyRepo, analysisService, log)
	statsService := service.NewStatsService(metricsRepo, policyRepo, cfg.Metrics, log)

	h := handler.NewHandler(eventService, analysisService, statsService, log)
	srv := server.NewServer(h, cfg.HTTP.Addr, log)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed to start", "error", err)
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runStalledSweeper(sweepCtx, analysisService, cfg.Analysis.SweepInterval, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}
}

// runStalledSweeper по таймеру переводит зависшие анализы в FAILED.
func runStalledSweeper(ctx context.Context, analysisService service.AnalysisService, interval time.Duration, log *zap.SugaredLogger) {
	sweeper := log.Named("sweeper")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := analysisService.ExpireStalled(ctx)
			if err != nil {
				sweeper.Errorw("failed to expire stalled runs", "error", err)
				continue
			}
			if expired > 0 {
				sweeper.Infow("stalled runs expired", "count", expired)
			}
		}
	}
}
