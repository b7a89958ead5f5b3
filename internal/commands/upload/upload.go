package upload

import (
	"context"
	"strconv"
	"strings"

	"github.com/thomas-vilte/matereview/internal/commands/completion_helper"
	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	"github.com/thomas-vilte/matereview/internal/git"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type UploadCommandFactory struct {
	container *di.Container
}

func NewUploadCommandFactory(container *di.Container) *UploadCommandFactory {
	return &UploadCommandFactory{container: container}
}

func (f *UploadCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: t.GetMessage("upload_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   t.GetMessage("upload_branch_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:    "topic",
				Aliases: []string{"t"},
				Usage:   t.GetMessage("upload_topic_flag", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "wip",
				Usage: t.GetMessage("upload_wip_flag", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.uploadAction(t, cfg),
	}
}

func (f *UploadCommandFactory) uploadAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		log := logger.FromContext(ctx)
		gitSvc := f.container.Git()

		if _, err := gitSvc.RepoRoot(ctx); err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		branch, err := targetBranch(ctx, gitSvc, cmd.String("branch"))
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		svc, err := f.container.Changes()
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		refspec := Refspec(branch, cmd.String("topic"), cmd.Bool("wip"))
		log.Info("uploading", "remote", cfg.Remote, "refspec", refspec)

		err = ui.WithSpinner(t.GetMessage("upload_pushing", 0, map[string]interface{}{"Branch": branch}), func() error {
			return gitSvc.Push(ctx, cfg.Remote, refspec)
		})
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		commits, err := gitSvc.CommitsSince(ctx, cfg.Remote+"/"+branch)
		if err != nil {
			log.Warn("could not list pushed commits, using HEAD", "error", err)
			if commits, err = gitSvc.CommitsSince(ctx, ""); err != nil {
				ui.HandleAppError(err, t)
				return err
			}
		}

		found, err := svc.FindByCommits(ctx, commits, changes.CurrentRevision)
		if err != nil {
			ui.HandleAppError(err, t)
			return err
		}

		ui.PrintSuccess(ui.Out, t.GetMessage("upload_done", 0, map[string]interface{}{"Branch": branch}))
		printChanges(t, cfg, found)
		return nil
	}
}

// Refspec is the push refspec for a review on branch, with Gerrit push
// options appended after "%".
func Refspec(branch, topic string, wip bool) string {
	var opts []string
	if topic != "" {
		opts = append(opts, "topic="+topic)
	}
	if wip {
		opts = append(opts, "wip")
	}
	refspec := "HEAD:refs/for/" + branch
	if len(opts) > 0 {
		refspec += "%" + strings.Join(opts, ",")
	}
	return refspec
}

// targetBranch is the flag value, or the branch the current branch
// tracks.
func targetBranch(ctx context.Context, gitSvc *git.GitService, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	current, err := gitSvc.GetCurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	if current != "" {
		upstream, ok, err := gitSvc.ReadUpstream(ctx, current)
		if err != nil {
			return "", err
		}
		if ok && upstream.Branch != "" {
			return upstream.Branch, nil
		}
	}
	return "", domainErrors.ErrInvalidArgument.
		WithContext("field", "branch").
		WithSuggestion("mate-review upload --branch <target>")
}

func printChanges(t *i18n.Translations, cfg *config.Config, found []models.ChangeInfo) {
	if len(found) == 0 {
		ui.PrintWarning(t.GetMessage("upload_no_changes", 0, nil))
		return
	}
	for _, c := range found {
		ui.PrintKeyValue(t.GetMessage("upload_change_label", 0, map[string]interface{}{"Number": c.Number}),
			c.Subject+"  "+cfg.Protocol+cfg.Host+"/c/"+c.Project+"/+/"+strconv.Itoa(c.Number))
	}
}
