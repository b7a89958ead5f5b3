package server

import (
	"context"
	"sort"
	"strings"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/di"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

type ServerCommandFactory struct {
	container *di.Container
}

func NewServerCommandFactory(container *di.Container) *ServerCommandFactory {
	return &ServerCommandFactory{container: container}
}

func (f *ServerCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: t.GetMessage("server_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: t.GetMessage("server_version_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, err := f.container.Server()
					if err != nil {
						ui.HandleAppError(err, t)
						return err
					}
					version, err := svc.Version(ctx)
					if err != nil {
						ui.HandleAppError(err, t)
						return err
					}
					ui.PrintKeyValue(cfg.Host, version)
					return nil
				},
			},
			{
				Name:  "info",
				Usage: t.GetMessage("server_info_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, err := f.container.Server()
					if err != nil {
						ui.HandleAppError(err, t)
						return err
					}
					info, err := svc.Info(ctx)
					if err != nil {
						ui.HandleAppError(err, t)
						return err
					}

					schemes := make([]string, 0, len(info.Download.Schemes))
					for name := range info.Download.Schemes {
						schemes = append(schemes, name)
					}
					sort.Strings(schemes)

					ui.PrintSectionBanner(cfg.Host)
					ui.PrintKeyValue(t.GetMessage("field_auth_type", 0, nil), info.Auth.AuthType)
					ui.PrintKeyValue(t.GetMessage("field_account_visibility", 0, nil), info.Accounts.Visibility)
					ui.PrintKeyValue(t.GetMessage("field_download_schemes", 0, nil), strings.Join(schemes, ", "))
					ui.PrintKeyValue(t.GetMessage("field_submit_whole_topic", 0, nil), yesNo(t, info.Change.SubmitWholeTopic))
					if info.Gerrit.DocURL != "" {
						ui.PrintKeyValue(t.GetMessage("field_docs", 0, nil), info.Gerrit.DocURL)
					}
					return nil
				},
			},
		},
	}
}

func yesNo(t *i18n.Translations, b bool) string {
	if b {
		return t.GetMessage("yes", 0, nil)
	}
	return t.GetMessage("no", 0, nil)
}
