package change

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/matereview/internal/commands/completion_helper"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

func (f *ChangeCommandFactory) newAssignCommand(t *i18n.Translations) *cli.Command {
	cmd := changeCommand(t, "assign", "change_assign_usage", "<change> <account>",
		f.changeAction(t, 2, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			assignee, err := svc.SetAssignee(ctx, id, cmd.Args().Get(1))
			if err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_assigned", 0, map[string]interface{}{
				"Change":   id.String(),
				"Assignee": assignee.Label(),
			}))
			return nil
		}))
	cmd.ShellComplete = f.accountComplete
	return cmd
}

func (f *ChangeCommandFactory) newReviewerCommand(t *i18n.Translations) *cli.Command {
	add := changeCommand(t, "add", "change_reviewer_add_usage", "<change> <reviewer>...",
		f.changeAction(t, 2, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			log := logger.FromContext(ctx)
			for _, reviewer := range cmd.Args().Tail() {
				if err := svc.AddReviewer(ctx, id, reviewer); err != nil {
					return err
				}
				log.Debug("reviewer added", "change", id.String(), "reviewer", reviewer)
				ui.PrintSuccess(ui.Out, t.GetMessage("change_reviewer_added", 0, map[string]interface{}{
					"Change":   id.String(),
					"Reviewer": reviewer,
				}))
			}
			return nil
		}))
	add.ShellComplete = f.accountComplete

	remove := changeCommand(t, "remove", "change_reviewer_remove_usage", "<change> <reviewer>",
		f.changeAction(t, 2, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			reviewer := cmd.Args().Get(1)
			if err := svc.RemoveReviewer(ctx, id, reviewer); err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_reviewer_removed", 0, map[string]interface{}{
				"Change":   id.String(),
				"Reviewer": reviewer,
			}))
			return nil
		}))
	remove.Aliases = []string{"rm"}
	remove.ShellComplete = f.accountComplete

	return &cli.Command{
		Name:     "reviewer",
		Usage:    t.GetMessage("change_reviewer_usage", 0, nil),
		Commands: []*cli.Command{add, remove},
	}
}

func (f *ChangeCommandFactory) newTopicCommand(t *i18n.Translations) *cli.Command {
	set := changeCommand(t, "set", "change_topic_set_usage", "<change> <topic>",
		f.changeAction(t, 2, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			stored, err := svc.SetTopic(ctx, id, cmd.Args().Get(1))
			if err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_topic_set", 0, map[string]interface{}{
				"Change": id.String(),
				"Topic":  stored,
			}))
			return nil
		}))

	del := changeCommand(t, "delete", "change_topic_delete_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			if err := svc.DeleteTopic(ctx, id); err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_topic_deleted", 0, map[string]interface{}{
				"Change": id.String(),
			}))
			return nil
		}))

	return &cli.Command{
		Name:     "topic",
		Usage:    t.GetMessage("change_topic_usage", 0, nil),
		Commands: []*cli.Command{set, del},
	}
}

func (f *ChangeCommandFactory) newVoteCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "vote", "change_vote_usage", "<change> <Label=+1>",
		f.changeAction(t, 2, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			vote, err := changes.ParseLabelVote(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			if err := svc.SetLabelVote(ctx, id, vote, cmd.String("message")); err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_voted", 0, map[string]interface{}{
				"Change": id.String(),
				"Label":  vote.Label,
				"Value":  formatVote(vote.Value),
			}))
			return nil
		}),
		messageFlag(t))
}

func (f *ChangeCommandFactory) newWipCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "wip", "change_wip_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			if err := svc.SetWorkInProgress(ctx, id); err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_wip_set", 0, map[string]interface{}{"Change": id.String()}))
			return nil
		}))
}

func (f *ChangeCommandFactory) newReadyCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "ready", "change_ready_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			if err := svc.SetReadyForReview(ctx, id); err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_ready_set", 0, map[string]interface{}{"Change": id.String()}))
			return nil
		}))
}

func (f *ChangeCommandFactory) newCommentCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "comment", "change_comment_usage", "<change> <message>",
		f.changeAction(t, 2, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			message := strings.Join(cmd.Args().Tail(), " ")
			if err := svc.AddComment(ctx, id, message); err != nil {
				return err
			}
			ui.PrintSuccess(ui.Out, t.GetMessage("change_commented", 0, map[string]interface{}{"Change": id.String()}))
			return nil
		}))
}

// accountComplete suggests account identifiers from the directory after
// the flags.
func (f *ChangeCommandFactory) accountComplete(ctx context.Context, cmd *cli.Command) {
	completion_helper.DefaultFlagComplete(ctx, cmd)
	dir, err := f.container.Accounts()
	if err != nil {
		return
	}
	completion_helper.PrintCandidates(dir.Identifiers(ctx))
}

func messageFlag(t *i18n.Translations) cli.Flag {
	return &cli.StringFlag{
		Name:    "message",
		Aliases: []string{"m"},
		Usage:   t.GetMessage("change_message_flag", 0, nil),
	}
}

func formatVote(v int) string {
	return fmt.Sprintf("%+d", v)
}
