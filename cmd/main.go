package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/thomas-vilte/matereview/internal/commands/accounts"
	cacheCmd "github.com/thomas-vilte/matereview/internal/commands/cache"
	"github.com/thomas-vilte/matereview/internal/commands/change"
	"github.com/thomas-vilte/matereview/internal/commands/config"
	"github.com/thomas-vilte/matereview/internal/commands/download"
	"github.com/thomas-vilte/matereview/internal/commands/registry"
	"github.com/thomas-vilte/matereview/internal/commands/server"
	"github.com/thomas-vilte/matereview/internal/commands/topic"
	"github.com/thomas-vilte/matereview/internal/commands/upload"
	cfg "github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Error starting mate-review: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load(".env")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not get the user home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, err
	}
	cfgApp.ApplyEnv()

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	container := di.NewContainer(cfgApp)

	registerCommand := registry.NewRegistry(cfgApp, translations)
	factories := []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"change", change.NewChangeCommandFactory(container)},
		{"topic", topic.NewTopicCommandFactory(container)},
		{"download", download.NewDownloadCommandFactory(container)},
		{"upload", upload.NewUploadCommandFactory(container)},
		{"accounts", accounts.NewAccountsCommandFactory(container)},
		{"server", server.NewServerCommandFactory(container)},
		{"config", config.NewConfigCommandFactory(container)},
		{"cache", cacheCmd.NewCacheCommandFactory(container)},
	}
	for _, f := range factories {
		if err := registerCommand.Register(f.name, f.factory); err != nil {
			return nil, err
		}
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd.Root())
		},
	})

	return &cli.Command{
		Name:                  "mate-review",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.FullVersion(),
		Description:           translations.GetMessage("app_description", 0, nil),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag_debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag_verbose", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			l := logger.Initialize(logger.Options{
				Debug:   cmd.Bool("debug"),
				Verbose: cmd.Bool("verbose"),
			})
			l.Debug("configuration loaded",
				"path", cfgApp.PathFile,
				"host", cfgApp.Host,
				"language", cfgApp.Language)
			return logger.WithLogger(ctx, l), nil
		},
		Commands: commands,
	}, nil
}
