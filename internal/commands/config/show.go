package config

import (
	"context"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			printConfig(t, cfg)
			return nil
		},
	}
}

func printConfig(t *i18n.Translations, cfg *config.Config) {
	ui.PrintSectionBanner(t.GetMessage("config_show_header", 0, nil))
	for _, key := range config.Keys {
		value, _ := cfg.Get(key)
		if value == "" {
			value = ui.Dim.Sprint(t.GetMessage("config_not_set", 0, nil))
		}
		ui.PrintKeyValue(key, value)
	}
	ui.PrintKeyValue(t.GetMessage("config_file", 0, nil), cfg.PathFile)
}
