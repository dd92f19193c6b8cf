package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/kalendas/internal/config"
	klog "example.com/kalendas/internal/log"
	"example.com/kalendas/internal/resource"
	"example.com/kalendas/internal/storage/driver"
	transport "example.com/kalendas/internal/transport/http"
)

func main() {
	cfg, err := config.ParseService()
	if err != nil {
		klog.New("info", "text").WithError(err).Fatal("config")
	}
	logger := klog.New(cfg.LogLevel, cfg.LogFormat)
	log := klog.Prefixed(logger, "main")
	log.WithField("driver", cfg.StoreDriver).WithField("port", cfg.Port).Info("event service starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := driver.Open(ctx, cfg.StoreConfig)
	if err != nil {
		log.WithError(err).Fatal("store connect")
	}
	defer store.Close(context.Background())
	klog.Prefixed(logger, "store").Infof("%s: connected", store.Name())

	events, err := resource.NewEventService(ctx, store, cfg)
	if err != nil {
		log.WithError(err).Error("event collection")
		return
	}

	deps := &transport.ServerDeps{
		Name:         "Event",
		Store:        store,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Log:          klog.Prefixed(logger, "http"),
	}
	h := deps.Router(transport.Resource("events", events))

	if err := transport.Serve(ctx, ":"+cfg.Port, h, log); err != nil {
		log.WithError(err).Error("http server")
		store.Close(context.Background())
		os.Exit(1)
	}
}
