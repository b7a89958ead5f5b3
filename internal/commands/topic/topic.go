package topic

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/matereview/internal/commands/completion_helper"
	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	gerritTopic "github.com/thomas-vilte/matereview/internal/gerrit/topic"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type TopicCommandFactory struct {
	container *di.Container
}

func NewTopicCommandFactory(container *di.Container) *TopicCommandFactory {
	return &TopicCommandFactory{container: container}
}

func (f *TopicCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "topic",
		Aliases: []string{"t"},
		Usage:   t.GetMessage("topic_usage", 0, nil),
		Commands: []*cli.Command{
			f.newShowCommand(t),
			f.newReviewersCommand(t),
			f.newUnreviewerCommand(t),
			f.newVoteCommand(t),
			f.newWipCommand(t),
			f.newReadyCommand(t),
			f.newCommentCommand(t),
		},
	}
}

func (f *TopicCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     t.GetMessage("topic_show_usage", 0, nil),
		ArgsUsage: "<topic>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := topicArg(cmd, 1)
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}
			fanout, err := f.container.Fanout()
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}

			var members []models.ChangeInfo
			err = ui.WithSpinner(t.GetMessage("topic_fetching", 0, nil), func() error {
				members, err = fanout.Info(ctx, name)
				return err
			})
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}

			if len(members) == 0 {
				ui.PrintInfo(t.GetMessage("topic_no_changes", 0, map[string]interface{}{"Topic": name}))
				return nil
			}

			ui.PrintSectionBanner(t.GetMessage("topic_banner", 0, map[string]interface{}{"Topic": name}))
			for i := range members {
				c := &members[i]
				status := c.Status
				if c.WorkInProgress {
					status = "WIP"
				}
				_, _ = fmt.Fprintf(ui.Out, "%s %s %s %s\n",
					ui.Accent.Sprintf("%6d", c.Number),
					ui.Dim.Sprintf("%-8s", status),
					c.Subject,
					ui.Dim.Sprintf("(%s/%s)", c.Project, c.Branch))
				if rev, ok := c.CurrentRevisionInfo(); ok {
					_, _ = fmt.Fprintf(ui.Out, "         %s\n", ui.Dim.Sprint(rev.Ref))
				}
			}
			return nil
		},
	}
}

func (f *TopicCommandFactory) newReviewersCommand(t *i18n.Translations) *cli.Command {
	cmd := f.fanoutCommand(t, "reviewers", "topic_reviewers_usage", "<topic> <reviewer>...", 2,
		func(ctx context.Context, cmd *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error) {
			return ops.SetReviewers(ctx, name, cmd.Args().Tail())
		})
	cmd.ShellComplete = f.accountComplete
	return cmd
}

func (f *TopicCommandFactory) newUnreviewerCommand(t *i18n.Translations) *cli.Command {
	cmd := f.fanoutCommand(t, "unreviewer", "topic_unreviewer_usage", "<topic> <reviewer>", 2,
		func(ctx context.Context, cmd *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error) {
			return ops.RemoveReviewer(ctx, name, cmd.Args().Get(1))
		})
	cmd.ShellComplete = f.accountComplete
	return cmd
}

func (f *TopicCommandFactory) newVoteCommand(t *i18n.Translations) *cli.Command {
	cmd := f.fanoutCommand(t, "vote", "topic_vote_usage", "<topic> <Label=+1>", 2,
		func(ctx context.Context, cmd *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error) {
			vote, err := changes.ParseLabelVote(cmd.Args().Get(1))
			if err != nil {
				return nil, err
			}
			return ops.SetLabelVote(ctx, name, vote, cmd.String("message"))
		})
	cmd.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   t.GetMessage("change_message_flag", 0, nil),
		},
	}
	return cmd
}

func (f *TopicCommandFactory) newWipCommand(t *i18n.Translations) *cli.Command {
	return f.fanoutCommand(t, "wip", "topic_wip_usage", "<topic>", 1,
		func(ctx context.Context, _ *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error) {
			return ops.SetWorkInProgress(ctx, name)
		})
}

func (f *TopicCommandFactory) newReadyCommand(t *i18n.Translations) *cli.Command {
	return f.fanoutCommand(t, "ready", "topic_ready_usage", "<topic>", 1,
		func(ctx context.Context, _ *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error) {
			return ops.SetReadyForReview(ctx, name)
		})
}

func (f *TopicCommandFactory) newCommentCommand(t *i18n.Translations) *cli.Command {
	return f.fanoutCommand(t, "comment", "topic_comment_usage", "<topic> <message>", 2,
		func(ctx context.Context, cmd *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error) {
			return ops.AddComment(ctx, name, strings.Join(cmd.Args().Tail(), " "))
		})
}

type fanoutFunc func(ctx context.Context, cmd *cli.Command, ops *gerritTopic.Operations, name string) ([]gerritTopic.ItemResult, error)

// fanoutCommand runs fn over a topic and prints one line per change
// attempted, then a summary.
func (f *TopicCommandFactory) fanoutCommand(t *i18n.Translations, name, usageID, argsUsage string, minArgs int, fn fanoutFunc) *cli.Command {
	return &cli.Command{
		Name:          name,
		Usage:         t.GetMessage(usageID, 0, nil),
		ArgsUsage:     argsUsage,
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			topicName, err := topicArg(cmd, minArgs)
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}
			ops, err := f.container.TopicOperations()
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}

			results, err := fn(ctx, cmd, ops, topicName)
			printResults(t, results)
			if err != nil {
				log.Debug("topic command failed", "command", name, "topic", topicName, "error", err)
				ui.HandleAppError(err, t)
				return err
			}

			if len(results) == 0 {
				ui.PrintInfo(t.GetMessage("topic_no_changes", 0, map[string]interface{}{"Topic": topicName}))
				return nil
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("topic_summary", 0, map[string]interface{}{
				"Applied": len(results),
				"Topic":   topicName,
			}))
			return nil
		},
	}
}

func printResults(t *i18n.Translations, results []gerritTopic.ItemResult) {
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(ui.Out, "   %s %d %s\n", ui.Error.Sprint("✗"), r.Number, ui.Dim.Sprint(t.GetMessage("topic_item_failed", 0, nil)))
			continue
		}
		_, _ = fmt.Fprintf(ui.Out, "   %s %d\n", ui.Success.Sprint("✓"), r.Number)
	}
}

func topicArg(cmd *cli.Command, minArgs int) (string, error) {
	if cmd.Args().Len() < minArgs {
		return "", domainErrors.ErrInvalidArgument.
			WithContext("field", "arguments").
			WithSuggestion(fmt.Sprintf("mate-review topic %s %s", cmd.Name, cmd.ArgsUsage))
	}
	name := cmd.Args().First()
	if strings.TrimSpace(name) == "" {
		return "", domainErrors.ErrEmptyTopic
	}
	return name, nil
}

func (f *TopicCommandFactory) accountComplete(ctx context.Context, cmd *cli.Command) {
	completion_helper.DefaultFlagComplete(ctx, cmd)
	dir, err := f.container.Accounts()
	if err != nil {
		return
	}
	completion_helper.PrintCandidates(dir.Identifiers(ctx))
}
