// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pklabs/keygate/cmd/app/commands"
	"github.com/pklabs/keygate/internal/app"
	"github.com/pklabs/keygate/internal/config"
)

const version = "1.0.0"

// withContainer loads configuration, builds a container, runs fn, and shuts
// the container down afterwards. Used by the admin commands, which need the
// use cases but no HTTP server.
func withContainer(fn func(ctx context.Context, cmd *cli.Command, container *app.Container) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		container := app.NewContainer(cfg)
		defer func() {
			if err := container.Shutdown(context.Background()); err != nil {
				container.Logger().Error("failed to shutdown container", slog.Any("error", err))
			}
		}()
		return fn(ctx, cmd, container)
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func keyIDFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "id",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "API key ID (UUID)",
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "keygate",
		Usage:   "API key authentication service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-account",
				Usage: "Create a new account that keys can be issued for",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "login",
						Aliases:  []string{"l"},
						Required: true,
						Usage:    "Unique account login",
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Unique account email address",
					},
					&cli.StringFlag{
						Name:    "display-name",
						Aliases: []string{"d"},
						Usage:   "Human-readable display name",
					},
					&cli.StringFlag{
						Name:    "capabilities",
						Aliases: []string{"c"},
						Usage:   "Comma-separated capabilities (read, manage_keys); defaults to read",
					},
					formatFlag(),
				},
				Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
					useCase, err := container.AccountUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize account use case: %w", err)
					}
					return commands.RunCreateAccount(
						ctx,
						useCase,
						container.Logger(),
						cmd.String("login"),
						cmd.String("email"),
						cmd.String("display-name"),
						cmd.String("capabilities"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				}),
			},
			{
				Name:  "generate-key",
				Usage: "Create or rotate the API key for an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "login",
						Aliases:  []string{"l"},
						Required: true,
						Usage:    "Owner account login",
					},
					formatFlag(),
				},
				Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
					useCase, err := container.KeyUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize key use case: %w", err)
					}
					return commands.RunGenerateKey(
						ctx,
						useCase,
						container.Logger(),
						cmd.String("login"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				}),
			},
			{
				Name:  "revoke-key",
				Usage: "Revoke an API key without deleting it",
				Flags: []cli.Flag{keyIDFlag()},
				Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
					useCase, err := container.KeyUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize key use case: %w", err)
					}
					return commands.RunRevokeKey(ctx, useCase, container.Logger(), cmd.String("id"), commands.DefaultIO())
				}),
			},
			{
				Name:  "restore-key",
				Usage: "Restore a revoked API key",
				Flags: []cli.Flag{keyIDFlag()},
				Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
					useCase, err := container.KeyUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize key use case: %w", err)
					}
					return commands.RunRestoreKey(ctx, useCase, container.Logger(), cmd.String("id"), commands.DefaultIO())
				}),
			},
			{
				Name:  "delete-key",
				Usage: "Permanently delete an API key",
				Flags: []cli.Flag{keyIDFlag()},
				Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
					useCase, err := container.KeyUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize key use case: %w", err)
					}
					return commands.RunDeleteKey(ctx, useCase, container.Logger(), cmd.String("id"), commands.DefaultIO())
				}),
			},
			{
				Name:  "list-keys",
				Usage: "List stored API keys, optionally filtered by a search term",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "term",
						Aliases: []string{"t"},
						Usage:   "Filter keys by token value or owner login substring",
					},
					&cli.IntFlag{
						Name:  "offset",
						Value: 0,
						Usage: "Number of keys to skip",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 50,
						Usage: "Maximum number of keys to return",
					},
					formatFlag(),
				},
				Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
					useCase, err := container.KeyUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize key use case: %w", err)
					}
					return commands.RunListKeys(
						ctx,
						useCase,
						container.Logger(),
						cmd.String("term"),
						cmd.Int("offset"),
						cmd.Int("limit"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
