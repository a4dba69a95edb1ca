package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rescuedogs/rescue-edge/internal/core/config"
	"github.com/rescuedogs/rescue-edge/internal/logger"
)

type globals struct {
	cfg     config.Config
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{cfg: config.FromEnv()}

	root := &cobra.Command{
		Use:   "rescuectl",
		Short: "rescue-edge operator CLI",
		Long: `rescuectl exercises the rescue-edge pipeline from the command line.

Example usage:
  rescuectl url https://images.rescuedogs.me/rex.jpg --preset hero
  rescuectl share encode 12 7 99
  rescuectl share decode AQcFVw
  rescuectl sitemap --out ./public`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if g.verbose {
				level = "debug"
			}
			zl := logger.Build(logger.Config{Level: level, Console: true, Service: "rescuectl"}, cmd.ErrOrStderr())
			g.logger = logger.NewSlog(&zl)
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&g.cfg.CDNDomain, "cdn", g.cfg.CDNDomain, "trusted image CDN host (CDN_DOMAIN)")
	root.PersistentFlags().StringVar(&g.cfg.SiteURL, "site", g.cfg.SiteURL, "public site URL (SITE_URL)")
	root.PersistentFlags().StringVar(&g.cfg.APIURL, "api", g.cfg.APIURL, "dogs API base URL (API_URL)")

	root.AddCommand(newURLCmd(g), newResponsiveCmd(g), newShareCmd(g), newSitemapCmd(g))
	return root
}
