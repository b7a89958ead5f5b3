package accounts

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	"github.com/thomas-vilte/matereview/internal/gerrit/accounts"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/models"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type AccountsCommandFactory struct {
	container *di.Container
}

func NewAccountsCommandFactory(container *di.Container) *AccountsCommandFactory {
	return &AccountsCommandFactory{container: container}
}

func (f *AccountsCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: t.GetMessage("accounts_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  t.GetMessage("accounts_list_usage", 0, nil),
				Action: f.listAction(t, (*accounts.Directory).List),
			},
			{
				Name:   "refresh",
				Usage:  t.GetMessage("accounts_refresh_usage", 0, nil),
				Action: f.listAction(t, (*accounts.Directory).Refresh),
			},
		},
	}
}

func (f *AccountsCommandFactory) listAction(t *i18n.Translations, load func(*accounts.Directory, context.Context) []models.AccountInfo) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		dir, err := f.container.Accounts()
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		var list []models.AccountInfo
		_ = ui.WithSpinner(t.GetMessage("accounts_loading", 0, nil), func() error {
			list = load(dir, ctx)
			return nil
		})

		if len(list) == 0 {
			ui.PrintWarning(t.GetMessage("accounts_empty", 0, nil))
			return nil
		}
		for i := range list {
			a := &list[i]
			_, _ = fmt.Fprintf(ui.Out, "%s %-20s %s\n",
				ui.Dim.Sprintf("%8d", a.AccountID),
				a.Identifier(),
				a.Label())
		}
		ui.PrintInfo(t.GetMessage("accounts_count", len(list), map[string]interface{}{"Count": len(list)}))
		return nil
	}
}
