package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/getachewzemene/minalesh-amplify-sub001/cmd/app/commands"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/app"
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/config"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getWebhookCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "stuck-events",
			Usage: "List webhook events stuck in received or processing",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "older-than",
					Aliases: []string{"o"},
					Value:   15 * time.Minute,
					Usage:   "Only list events not updated for at least this long",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   100,
					Usage:   "Maximum number of events to list",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				eventUseCase, err := container.EventUseCase()
				if err != nil {
					return err
				}

				return commands.RunStuckEvents(
					ctx,
					eventUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Duration("older-than"),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "archive-events",
			Usage: "Archive processed and failed webhook events older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Archive events older than this many days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many events would be archived without archiving",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				eventUseCase, err := container.EventUseCase()
				if err != nil {
					return err
				}

				return commands.RunArchiveEvents(
					ctx,
					eventUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sign-payload",
			Usage: "Print the HMAC-SHA256 signature of a webhook body",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Signing secret",
				},
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"i"},
					Value:   "-",
					Usage:   "Body file, or '-' for stdin",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				io := commands.DefaultIO()
				return commands.RunSignPayload(io.Reader, io.Writer, cmd.String("secret"), cmd.String("file"))
			},
		},
		{
			Name:  "encrypt-secret",
			Usage: "Encrypt a webhook secret with the configured KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Plaintext webhook secret",
				},
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Aliases: []string{"k"},
					Usage:   "KMS key URI (defaults to WEBHOOK_SECRETS_KMS_KEY_URI)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyURI := cmd.String("kms-key-uri")
				if keyURI == "" {
					keyURI = cfg.WebhookSecretsKMSKeyURI
				}

				return commands.RunEncryptSecret(
					ctx,
					container.SecretResolver(),
					container.Logger(),
					commands.DefaultIO().Writer,
					keyURI,
					cmd.String("secret"),
				)
			},
		},
	}
}
