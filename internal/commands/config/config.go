package config

import (
	"io"
	"os"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct {
	container *di.Container
	in        io.Reader
}

func NewConfigCommandFactory(container *di.Container) *ConfigCommandFactory {
	return &ConfigCommandFactory{container: container, in: os.Stdin}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config_usage", 0, nil),
		Commands: []*cli.Command{
			c.newInitCommand(t, cfg),
			c.newShowCommand(t, cfg),
			c.newSetCommand(t, cfg),
			c.newEditCommand(t, cfg),
		},
	}
}
