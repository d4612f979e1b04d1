package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/getachewzemene/minalesh-amplify-sub001/cmd/app/commands"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/app"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server (and the outbox worker unless OUTBOX_WORKER_ENABLED=false)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "worker",
			Usage: "Run only the outbox worker (commission posting and notifications)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(context.Background()) }()

				worker, err := container.OutboxUseCase()
				if err != nil {
					return err
				}

				ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer cancel()

				return commands.RunWorker(ctx, worker, container.Logger())
			},
		},
	}
}
