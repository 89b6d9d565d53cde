package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"topic-insights-go/internal/api"
	"topic-insights-go/internal/config"
	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/pipeline"
	"topic-insights-go/internal/scheduler"
	"topic-insights-go/internal/types"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "topic-insights-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire service")
	}
	defer app.close()

	runner := pipeline.NewRunner(app.deps, pipeline.Options{
		Hours:          cfg.AnalysisHours,
		MaxSessions:    cfg.MaxSessions,
		MaxTopics:      cfg.MaxTopics,
		ClusterTimeout: cfg.ClusterTimeout,
		InsightTimeout: cfg.InsightTimeout,
	})

	var sched *scheduler.Scheduler
	if cfg.ScheduleEnabled && len(cfg.ClientIDs) > 0 {
		sched = scheduler.New(runner, 30*time.Minute, log)
		if err := sched.Schedule(cfg.DailyCron, types.PeriodDaily, cfg.ClientIDs); err != nil {
			log.WithError(err).Fatal("failed to schedule daily runs")
		}
		if err := sched.Schedule(cfg.WeeklyCron, types.PeriodWeekly, cfg.ClientIDs); err != nil {
			log.WithError(err).Fatal("failed to schedule weekly runs")
		}
		sched.Start()
	}

	router := api.NewRouter(api.Deps{
		Runner:   runner,
		Topics:   app.store,
		Messages: app.messages,
		Log:      log,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ClusterTimeout + cfg.InsightTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("scheduled runs still in progress at shutdown")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
