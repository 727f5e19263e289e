// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/insolar/timelock/configuration"
	"github.com/insolar/timelock/internal/app/api"
	"github.com/insolar/timelock/internal/app/timelock"
	"github.com/insolar/timelock/observability"
)

var fundOnStart uint64

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadTimelockConfig()
		if err != nil {
			return err
		}
		obs := observability.Make(cfg.Log)
		configuration.PrintConfig(obs.Log(), cfg)
		return serve(cfg, obs)
	},
}

func init() {
	serveCmd.Flags().Uint64Var(&fundOnStart, "fund", 0, "credit the custody account on start (memory storage only)")
	rootCmd.AddCommand(serveCmd)
}

func newServer(cfg *configuration.Timelock, obs *observability.Observability, b *backends, clock timelock.Clock) (*echo.Echo, error) {
	engine, err := buildEngine(cfg, obs, b, clock)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(obs.Metrics(), promhttp.HandlerOpts{})))
	e.GET("/healthcheck", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "OK")
	})
	api.RegisterHandlers(e, api.NewTimelockServer(engine, b.ledger, b.reader, obs.Log()))
	return e, nil
}

func serve(cfg *configuration.Timelock, obs *observability.Observability) error {
	log := obs.Log()

	b, err := buildBackends(cfg, obs)
	if err != nil {
		return errors.Wrap(err, "failed to init storage")
	}
	defer b.Close()

	if fundOnStart > 0 {
		if cfg.Storage != configuration.StorageMemory {
			return errors.New("--fund is only allowed with memory storage, use the fund command")
		}
		if err := fund(context.Background(), cfg, b, fundOnStart, log); err != nil {
			return err
		}
	}

	e, err := newServer(cfg, obs, b, timelock.PulseClock{})
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.API.Listen); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
		close(errs)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		return errors.Wrap(err, "api server failed")
	case <-stop:
	}

	log.Info("gracefully stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
