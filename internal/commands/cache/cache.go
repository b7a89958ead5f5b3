package cache

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type CacheCommandFactory struct {
	container *di.Container
}

func NewCacheCommandFactory(container *di.Container) *CacheCommandFactory {
	return &CacheCommandFactory{container: container}
}

func (f *CacheCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: t.GetMessage("cache_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "clean",
				Usage: t.GetMessage("cache_clean_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := f.container.Cache()
					if err != nil {
						return fmt.Errorf(t.GetMessage("cache_error_init", 0, nil)+": %w", err)
					}

					if err := store.Clean(); err != nil {
						return fmt.Errorf(t.GetMessage("cache_error_clean", 0, nil)+": %w", err)
					}

					ui.PrintSuccess(ui.Out, t.GetMessage("cache_cleaned", 0, map[string]interface{}{"Dir": store.Dir()}))
					return nil
				},
			},
		},
	}
}
