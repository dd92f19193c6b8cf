package main

import (
	"context"
	"os/signal"
	"syscall"

	"example.com/kalendas/internal/config"
	"example.com/kalendas/internal/gateway"
	klog "example.com/kalendas/internal/log"
	transport "example.com/kalendas/internal/transport/http"
)

func main() {
	cfg, err := config.ParseGateway()
	if err != nil {
		klog.New("info", "text").WithError(err).Fatal("config")
	}
	logger := klog.New(cfg.LogLevel, cfg.LogFormat)
	log := klog.Prefixed(logger, "main")

	reg, err := gateway.NewRegistry(cfg.Services())
	if err != nil {
		log.WithError(err).Fatal("service registry")
	}
	for _, name := range reg.Names() {
		u, _ := reg.Lookup(name)
		log.WithField("service", name).Infof("routing /%s/ to %s", name, u)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	router := gateway.NewRouter(reg, gateway.Options{
		Timeout:        cfg.UpstreamTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigin,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Log:            klog.Prefixed(logger, "gateway"),
	})

	if err := transport.Serve(ctx, ":"+cfg.Port, router.Handler(), log); err != nil {
		log.WithError(err).Fatal("http server")
	}
}
