package config

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/matereview/internal/config"
	"github.com/thomas-vilte/matereview/internal/i18n"
	"github.com/thomas-vilte/matereview/internal/logger"
	"github.com/thomas-vilte/matereview/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  t.GetMessage("config_init_usage", 0, nil),
		Action: c.initConfigAction(cfg, t),
	}
}

// initConfigAction asks for each setting, keeping the current value on an
// empty answer, then checks the server answers.
func (c *ConfigCommandFactory) initConfigAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		log := logger.FromContext(ctx)
		reader := bufio.NewReader(c.in)

		ui.PrintSectionBanner(t.GetMessage("config_init_header", 0, nil))

		updated := *cfg
		for _, key := range []string{"host", "protocol", "endpoint_prefix", "remote", "language"} {
			current, _ := updated.Get(key)
			_, _ = fmt.Fprintf(ui.Out, "%s [%s]: ", t.GetMessage("config_prompt_"+key, 0, nil), current)

			answer, err := reader.ReadString('\n')
			if err != nil && answer == "" {
				break
			}
			answer = strings.TrimSpace(answer)
			if answer == "" {
				continue
			}
			if err := updated.Set(key, answer); err != nil {
				ui.HandleAppError(err, t)
				return err
			}
		}
		_, _ = fmt.Fprintln(ui.Out)

		if err := config.SaveConfig(&updated); err != nil {
			ui.HandleAppError(err, t)
			return err
		}
		*cfg = updated
		ui.PrintSuccess(ui.Out, t.GetMessage("config_init_saved", 0, map[string]interface{}{"Path": cfg.PathFile}))

		if cfg.Host == "" || c.container == nil {
			return nil
		}
		svc, err := c.container.Server()
		if err != nil {
			return nil
		}
		version, err := svc.Version(ctx)
		if err != nil {
			log.Debug("server check failed", "host", cfg.Host, "error", err)
			ui.PrintWarning(t.GetMessage("config_init_unreachable", 0, map[string]interface{}{"Host": cfg.Host}))
			return nil
		}
		ui.PrintSuccess(ui.Out, t.GetMessage("config_init_reachable", 0, map[string]interface{}{
			"Host":    cfg.Host,
			"Version": version,
		}))
		return nil
	}
}
