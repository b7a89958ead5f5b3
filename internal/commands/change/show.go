package change

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/models"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

func (f *ChangeCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "show", "change_show_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}
			if len(opts) == 0 {
				opts = []changes.QueryOption{changes.CurrentRevision, changes.DetailedLabels, changes.DetailedAccounts}
			}

			var change *models.ChangeInfo
			err = ui.WithSpinner(t.GetMessage("change_fetching", 0, nil), func() error {
				change, err = svc.Get(ctx, id, opts...)
				return err
			})
			if err != nil {
				return err
			}

			printChange(t, change)
			return nil
		}),
		optionsFlag(t))
}

func (f *ChangeCommandFactory) newQueryCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Aliases:   []string{"q"},
		Usage:     t.GetMessage("change_query_usage", 0, nil),
		ArgsUsage: "<expression>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("change_limit_flag", 0, nil),
				Value:   int64(cfg.QueryLimit),
			},
			optionsFlag(t),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			expr := strings.Join(cmd.Args().Slice(), " ")
			opts, err := parseOptions(cmd)
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}
			svc, err := f.container.Changes()
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}

			results, err := svc.Query(ctx, expr, int(cmd.Int("limit")), opts...)
			if err != nil {
				ui.HandleAppError(err, t)
				return err
			}
			log.Debug("query finished", "expression", expr, "count", len(results))

			if len(results) == 0 {
				ui.PrintInfo(t.GetMessage("change_query_empty", 0, nil))
				return nil
			}
			for i := range results {
				printChangeLine(&results[i])
			}
			if results[len(results)-1].MoreChanges {
				ui.PrintInfo(t.GetMessage("change_query_more", 0, nil))
			}
			return nil
		},
	}
}

func (f *ChangeCommandFactory) newMessagesCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "messages", "change_messages_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			messages, err := svc.GetMessages(ctx, id)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				ui.PrintInfo(t.GetMessage("change_messages_empty", 0, nil))
				return nil
			}
			for _, m := range messages {
				_, _ = fmt.Fprintf(ui.Out, "%s %s\n", ui.Dim.Sprint(m.Date.String()), ui.Info.Sprint(m.Author.Label()))
				for _, line := range strings.Split(strings.TrimRight(m.Message, "\n"), "\n") {
					_, _ = fmt.Fprintf(ui.Out, "   %s\n", line)
				}
			}
			return nil
		}))
}

func (f *ChangeCommandFactory) newCommentsCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "comments", "change_comments_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			byPath, err := svc.GetComments(ctx, id)
			if err != nil {
				return err
			}
			if len(byPath) == 0 {
				ui.PrintInfo(t.GetMessage("change_comments_empty", 0, nil))
				return nil
			}

			paths := make([]string, 0, len(byPath))
			for p := range byPath {
				paths = append(paths, p)
			}
			sort.Strings(paths)

			for _, p := range paths {
				_, _ = fmt.Fprintf(ui.Out, "%s\n", ui.Accent.Sprint(p))
				for _, c := range byPath[p] {
					where := ""
					if c.Line > 0 {
						where = fmt.Sprintf(":%d", c.Line)
					}
					_, _ = fmt.Fprintf(ui.Out, "   PS%d%s %s: %s\n", c.PatchSet, where, c.Author.Label(), c.Message)
				}
			}
			return nil
		}))
}

func (f *ChangeCommandFactory) newLabelsCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "labels", "change_labels_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			labels, err := svc.GetCurrentLabels(ctx, id)
			if err != nil {
				return err
			}
			printLabels(t, labels)
			return nil
		}))
}

func (f *ChangeCommandFactory) newPatchCommand(t *i18n.Translations) *cli.Command {
	return changeCommand(t, "patch", "change_patch_usage", "<change>",
		f.changeAction(t, 1, func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error {
			patch, err := svc.DownloadPatch(ctx, id)
			if err != nil {
				return err
			}
			if !cmd.Bool("stat") {
				_, _ = ui.Out.Write(patch)
				return nil
			}

			summary, err := changes.SummarizePatch(patch)
			if err != nil {
				return err
			}
			files := make([]ui.FileChange, len(summary.Files))
			for i, fs := range summary.Files {
				files[i] = ui.FileChange{Path: fs.Path, Additions: fs.Added, Deletions: fs.Removed}
			}
			ui.ShowFilesTree(files, t.GetMessage("change_patch_files", 0, nil))
			_, _ = fmt.Fprintln(ui.Out, t.GetMessage("change_patch_totals", 0, map[string]interface{}{
				"Files":   len(summary.Files),
				"Added":   summary.Added,
				"Removed": summary.Removed,
			}))
			return nil
		}),
		&cli.BoolFlag{
			Name:  "stat",
			Usage: t.GetMessage("change_patch_stat_flag", 0, nil),
		})
}

func printChange(t *i18n.Translations, c *models.ChangeInfo) {
	ui.PrintSectionBanner(fmt.Sprintf("%d: %s", c.Number, c.Subject))
	ui.PrintKeyValue(t.GetMessage("field_project", 0, nil), c.Project)
	ui.PrintKeyValue(t.GetMessage("field_branch", 0, nil), c.Branch)
	if c.Topic != "" {
		ui.PrintKeyValue(t.GetMessage("field_topic", 0, nil), c.Topic)
	}
	status := c.Status
	if c.WorkInProgress {
		status += " (WIP)"
	}
	ui.PrintKeyValue(t.GetMessage("field_status", 0, nil), status)
	ui.PrintKeyValue(t.GetMessage("field_owner", 0, nil), c.Owner.Label())
	if c.Assignee != nil {
		ui.PrintKeyValue(t.GetMessage("field_assignee", 0, nil), c.Assignee.Label())
	}
	ui.PrintKeyValue(t.GetMessage("field_change_id", 0, nil), c.ChangeID)
	ui.PrintKeyValue(t.GetMessage("field_updated", 0, nil), c.Updated.String())
	ui.PrintKeyValue(t.GetMessage("field_size", 0, nil), fmt.Sprintf("+%d, -%d", c.Insertions, c.Deletions))
	if rev, ok := c.CurrentRevisionInfo(); ok {
		ui.PrintKeyValue(t.GetMessage("field_revision", 0, nil), fmt.Sprintf("%d (%s)", rev.Number, rev.Ref))
	}
	if len(c.Labels) > 0 {
		_, _ = fmt.Fprintln(ui.Out)
		printLabels(t, models.LabelSet(c.Labels))
	}
}

func printChangeLine(c *models.ChangeInfo) {
	status := c.Status
	if c.WorkInProgress {
		status = "WIP"
	}
	_, _ = fmt.Fprintf(ui.Out, "%s %s %s %s\n",
		ui.Accent.Sprintf("%6d", c.Number),
		ui.Dim.Sprintf("%-8s", status),
		c.Subject,
		ui.Dim.Sprintf("(%s, %s)", c.Project, c.Owner.Label()))
}

func printLabels(t *i18n.Translations, labels models.LabelSet) {
	if len(labels) == 0 {
		ui.PrintInfo(t.GetMessage("change_labels_empty", 0, nil))
		return
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, _ = fmt.Fprintf(ui.Out, "   %s\n", ui.Info.Sprint(name))
		votes := labels.Votes(name)
		who := make([]string, 0, len(votes))
		for w := range votes {
			who = append(who, w)
		}
		sort.Strings(who)
		for _, w := range who {
			ui.PrintVote(w, votes[w])
		}
	}
}
