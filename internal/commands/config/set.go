package config

import (
	"context"
	"strings"

	"github.com/thomas-vilte/matereview/internal/commands/completion_helper"
	"github.com/thomas-vilte/matereview/internal/config"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config_set_usage", 0, nil),
		ArgsUsage: t.GetMessage("config_set_args_usage", 0, nil),
		ShellComplete: func(ctx context.Context, cmd *cli.Command) {
			if cmd.Args().Len() == 0 {
				completion_helper.PrintCandidates(config.Keys)
			}
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log := logger.FromContext(ctx)

			if command.Args().Len() < 2 {
				err := domainErrors.ErrInvalidArgument.
					WithContext("field", "arguments").
					WithSuggestion("mate-review config set <key> <value>\nKeys: " + strings.Join(config.Keys, ", "))
				ui.HandleAppError(err, t)
				return err
			}

			key := strings.ToLower(command.Args().Get(0))
			value := command.Args().Get(1)

			previous := *cfg
			if err := cfg.Set(key, value); err != nil {
				*cfg = previous
				ui.HandleAppError(err, t)
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				*cfg = previous
				ui.HandleAppError(err, t)
				return err
			}

			log.Debug("configuration updated", "key", key)
			ui.PrintSuccess(ui.Out, t.GetMessage("config_saved", 0, map[string]interface{}{
				"Key":   key,
				"Value": value,
			}))
			return nil
		},
	}
}
