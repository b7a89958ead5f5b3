package download

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/matereview/internal/commands/completion_helper"
	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
	"github.com/thomas-vilte/matereview/internal/review"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type DownloadCommandFactory struct {
	container *di.Container
}

func NewDownloadCommandFactory(container *di.Container) *DownloadCommandFactory {
	return &DownloadCommandFactory{container: container}
}

func (f *DownloadCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "download",
		Aliases:       []string{"dl"},
		Usage:         t.GetMessage("download_usage", 0, nil),
		ArgsUsage:     "<change>",
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.downloadAction(t, cfg),
	}
}

func (f *DownloadCommandFactory) downloadAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		log := logger.FromContext(ctx)

		if cmd.Args().Len() < 1 {
			err := domainErrors.ErrInvalidArgument.
				WithContext("field", "arguments").
				WithSuggestion("mate-review download <change>")
			ui.HandleAppError(err, t)
			return err
		}
		id, err := changes.ParseID(cmd.Args().First())
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		svc, err := f.container.Changes()
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}
		reconciler, err := f.container.Reconciler()
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		var change *models.ChangeInfo
		var result *review.Result
		err = ui.WithSpinner(t.GetMessage("download_fetching", 0, map[string]interface{}{"Change": id.String()}), func() error {
			change, err = svc.Get(ctx, id, changes.CurrentRevision, changes.DetailedAccounts)
			if err != nil {
				return err
			}
			result, err = reconciler.Reconcile(ctx, change)
			return err
		})
		if err != nil {
			if result != nil {
				log.Debug("download stopped", "state", result.State.String(), "branch", result.Branch)
			}
			ui.HandleAppError(err, t)
			return err
		}

		msgID := "download_moved"
		if result.Created {
			msgID = "download_created"
		}
		ui.PrintSuccess(ui.Out, t.GetMessage(msgID, 0, map[string]interface{}{
			"Branch": result.Branch,
			"Change": change.Number,
		}))
		ui.PrintKeyValue(t.GetMessage("field_refspec", 0, nil), result.Refspec)
		ui.PrintKeyValue(t.GetMessage("field_commit", 0, nil), shortCommit(result.Commit))
		ui.PrintKeyValue(t.GetMessage("field_upstream", 0, nil), fmt.Sprintf("%s/%s", cfg.Remote, change.Branch))
		return nil
	}
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
