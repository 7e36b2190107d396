package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"phone-dashboard-go/internal/api"
	"phone-dashboard-go/internal/config"
	"phone-dashboard-go/internal/dataset"
	"phone-dashboard-go/internal/filter"
	"phone-dashboard-go/internal/holiday"
	"phone-dashboard-go/internal/logger"
	"phone-dashboard-go/internal/reload"
)

func main() {
	// config first so .env values reach the logger
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New()
	log.WithField("service", "phone-dashboard-go").
		WithField("port", cfg.Port).
		WithField("data_dir", cfg.DataDir).
		WithField("timezone", cfg.Location.String()).
		WithField("allowed_origins", cfg.AllowedOrigins).
		Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := dataset.NewStore()
	reloader := reload.New(store, cfg.DataDir, dataset.LoadOptions{
		Location: cfg.Location,
		Holidays: holiday.NewNagerClient(cfg.HolidayAPIURL, cfg.HolidayCountry, cfg.HolidayRegion, cfg.HolidayTimeout),
	})

	// the server starts without data; /reload or a watcher can install it later
	if ds, err := reloader.Reload(ctx); err != nil {
		log.WithError(err).Warn("initial dataset load failed")
	} else {
		log.WithField("dataset_id", ds.ID).WithField("calls", len(ds.Records)).Info("initial dataset loaded")
	}

	if cfg.WatchDataDir {
		w, err := reloader.Watch(ctx)
		if err != nil {
			log.WithError(err).Warn("data directory watch disabled")
		} else {
			defer w.Stop()
		}
	}
	if cfg.ReloadSchedule != "" {
		c, err := reloader.Schedule(ctx, cfg.ReloadSchedule)
		if err != nil {
			log.WithError(err).Fatal("failed to schedule reloads")
		}
		defer func() { <-c.Stop().Done() }()
	}

	defaults := filter.DefaultState().
		WithServiceLevelTarget(cfg.ServiceLevelTarget).
		WithCallbackHours(cfg.CallbackWindow)
	server := &api.Server{
		Store:    store,
		Reloader: reloader,
		Catalog:  filter.DefaultCatalog().WithInternalExtensions(cfg.InternalExtensions),
		Defaults: defaults,
		Log:      log,
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server stopped")
}
