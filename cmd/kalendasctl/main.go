package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"example.com/kalendas/internal/config"
	klog "example.com/kalendas/internal/log"
	"example.com/kalendas/internal/resource"
	"example.com/kalendas/internal/seed"
	"example.com/kalendas/internal/storage"
	"example.com/kalendas/internal/storage/driver"
)

func main() {
	app := &cli.App{
		Name:  "kalendasctl",
		Usage: "Operate the Kalendas store: load sample data, drop it, check connectivity.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		},
		Commands: []*cli.Command{
			seedCommand(),
			dropCommand(),
			pingCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("kalendasctl failed")
		os.Exit(1)
	}
}

// withStore opens the configured store, runs fn and always releases the
// store afterwards, whether fn succeeded or not.
func withStore(c *cli.Context, fn func(ctx context.Context, s storage.Store, cfg config.StoreConfig, log *logrus.Entry) error) error {
	cfg, err := config.ParseStore()
	if err != nil {
		return err
	}
	log := klog.Prefixed(klog.New(c.String("log-level"), "text"), "seed")

	ctx := c.Context
	s, err := driver.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			log.WithError(err).Warn("closing store")
			return
		}
		log.Infof("%s connection closed", s.Name())
	}()

	return fn(ctx, s, cfg, log)
}

func seeder(ctx context.Context, s storage.Store, cfg config.StoreConfig, log *logrus.Entry) (*seed.Seeder, error) {
	cals, err := resource.CalendarRepository(ctx, s, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	evs, err := resource.EventRepository(ctx, s, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	return &seed.Seeder{Calendars: cals, Events: evs, Log: log}, nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Replace the calendars and events with a small sample data set.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "keep", Usage: "Add the sample data without dropping existing records."},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, func(ctx context.Context, s storage.Store, cfg config.StoreConfig, log *logrus.Entry) error {
				sd, err := seeder(ctx, s, cfg, log)
				if err != nil {
					return err
				}
				res, err := sd.Run(ctx, c.Bool("keep"))
				if err != nil {
					return err
				}
				for _, cal := range res.Calendars {
					fmt.Printf("calendar %s  %s\n", cal.ID, cal.Title)
				}
				for _, ev := range res.Events {
					fmt.Printf("event    %s  %s\n", ev.ID, ev.Title)
				}
				return nil
			})
		},
	}
}

func dropCommand() *cli.Command {
	return &cli.Command{
		Name:  "drop",
		Usage: "Delete every calendar and event.",
		Action: func(c *cli.Context) error {
			return withStore(c, func(ctx context.Context, s storage.Store, cfg config.StoreConfig, log *logrus.Entry) error {
				sd, err := seeder(ctx, s, cfg, log)
				if err != nil {
					return err
				}
				return sd.Drop(ctx)
			})
		},
	}
}

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the configured store is reachable.",
		Action: func(c *cli.Context) error {
			return withStore(c, func(ctx context.Context, s storage.Store, cfg config.StoreConfig, log *logrus.Entry) error {
				fmt.Printf("%s: ok\n", s.Name())
				return nil
			})
		},
	}
}
