package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mobiless/internal/logger"
	"github.com/samcharles93/mobiless/internal/server"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxUpload   int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the strip and inspect HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload-bytes",
				Usage:       "largest accepted request body",
				Value:       server.DefaultMaxUpload,
				Destination: &maxUpload,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, cfg, &addr, &maxUpload)
			log := logger.FromContext(ctx)

			srv := server.New(server.Config{
				MaxUpload: maxUpload,
				Logger:    log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			srv.Register(e)
			log.Info("starting server", "address", addr, "max_upload_bytes", maxUpload)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(hs *http.Server) error {
					hs.ReadHeaderTimeout = readTimeout
					hs.ReadTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
