package change

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/matereview/internal/commands/completion_helper"
	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/gerrit/changes"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type ChangeCommandFactory struct {
	container *di.Container
}

func NewChangeCommandFactory(container *di.Container) *ChangeCommandFactory {
	return &ChangeCommandFactory{container: container}
}

func (f *ChangeCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "change",
		Aliases: []string{"c"},
		Usage:   t.GetMessage("change_usage", 0, nil),
		Commands: []*cli.Command{
			f.newShowCommand(t),
			f.newQueryCommand(t, cfg),
			f.newAssignCommand(t),
			f.newReviewerCommand(t),
			f.newTopicCommand(t),
			f.newVoteCommand(t),
			f.newWipCommand(t),
			f.newReadyCommand(t),
			f.newCommentCommand(t),
			f.newMessagesCommand(t),
			f.newCommentsCommand(t),
			f.newLabelsCommand(t),
			f.newPatchCommand(t),
		},
	}
}

// changeAction resolves the change argument and the service before running fn.
func (f *ChangeCommandFactory) changeAction(t *i18n.Translations, minArgs int, fn func(ctx context.Context, cmd *cli.Command, svc *changes.Service, id changes.ChangeID) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() < minArgs {
			err := domainErrors.ErrInvalidArgument.
				WithContext("field", "arguments").
				WithSuggestion(fmt.Sprintf("mate-review change %s %s", cmd.Name, cmd.ArgsUsage))
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

		if err := fn(ctx, cmd, svc, id); err != nil {
			ui.HandleAppError(err, t)
			return err
		}
		return nil
	}
}

func optionsFlag(t *i18n.Translations) cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "option",
		Aliases: []string{"o"},
		Usage:   t.GetMessage("change_option_flag", 0, nil),
	}
}

func parseOptions(cmd *cli.Command) ([]changes.QueryOption, error) {
	var opts []changes.QueryOption
	for _, s := range cmd.StringSlice("option") {
		o, err := changes.ParseOption(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, nil
}

func changeCommand(t *i18n.Translations, name, usageID, argsUsage string, action cli.ActionFunc, flags ...cli.Flag) *cli.Command {
	return &cli.Command{
		Name:          name,
		Usage:         t.GetMessage(usageID, 0, nil),
		ArgsUsage:     argsUsage,
		Flags:         flags,
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        action,
	}
}
