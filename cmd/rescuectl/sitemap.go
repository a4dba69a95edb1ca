package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rescuedogs/rescue-edge/internal/backend"
	"github.com/rescuedogs/rescue-edge/internal/seo"
)

func newSitemapCmd(g *globals) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Fetch the catalog and write sitemap.xml plus its parts",
		Long: `Fetch every available dog and organization from the API and write
<out>/sitemap.xml and <out>/sitemaps/<n>.xml.

Examples:
  rescuectl sitemap --out ./public
  rescuectl sitemap --api http://localhost:8000 --site https://staging.rescuedogs.me`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := backend.New(g.logger, g.cfg.APIURL)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ds, err := c.AllDogs(ctx)
			if err != nil {
				return fmt.Errorf("fetch dogs: %w", err)
			}
			orgs, err := c.ListOrganizations(ctx)
			if err != nil {
				return fmt.Errorf("fetch organizations: %w", err)
			}

			now := time.Now().UTC()
			urls := seo.SiteURLs(g.cfg.SiteURL, ds, orgs, now)
			parts, err := seo.BuildSitemaps(urls)
			if err != nil {
				return err
			}
			if err := writeSitemaps(out, g.cfg.SiteURL, parts, now); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d urls in %d sitemap(s) to %s\n", len(urls), len(parts), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	return cmd
}

func writeSitemaps(dir, site string, parts [][]byte, now time.Time) error {
	if err := os.MkdirAll(filepath.Join(dir, "sitemaps"), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, b := range parts {
		p := filepath.Join(dir, "sitemaps", strconv.Itoa(i+1)+".xml")
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	idx, err := seo.BuildIndex(site, len(parts), now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "sitemap.xml"), idx, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
