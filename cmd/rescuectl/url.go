package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rescuedogs/rescue-edge/internal/imageurl"
)

func newURLCmd(g *globals) *cobra.Command {
	var (
		preset string
		slow   bool
		opts   imageurl.Options
		fit    string
	)
	cmd := &cobra.Command{
		Use:   "url <src>",
		Short: "Print the CDN URL for an image",
		Long: `Print the transformed CDN URL for an image and how it was resolved.

Examples:
  rescuectl url https://images.rescuedogs.me/rex.jpg
  rescuectl url https://images.rescuedogs.me/rex.jpg --preset thumbnail --slow
  rescuectl url https://images.rescuedogs.me/rex.jpg -w 640 --format webp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset != "" {
				if _, ok := imageurl.LookupPreset(preset); !ok {
					return fmt.Errorf("unknown preset %q (want one of %s)", preset, strings.Join(imageurl.PresetNames(), ", "))
				}
			}
			opts.Fit = imageurl.FitMode(fit)
			b := imageurl.NewBuilder(g.cfg.CDNDomain, g.cfg.SlowQuality)
			u, out := b.Transform(args[0], preset, opts, slow)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u, out)
			return err
		},
	}
	cmd.Flags().StringVarP(&preset, "preset", "p", imageurl.Catalog, "preset name")
	cmd.Flags().BoolVar(&slow, "slow", false, "treat the connection as slow")
	cmd.Flags().IntVarP(&opts.Width, "width", "w", 0, "width override")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "height override")
	cmd.Flags().StringVar(&fit, "fit", "", "fit override")
	cmd.Flags().StringVarP(&opts.Quality, "quality", "q", "", "quality override (auto or 1-100)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "output format")
	return cmd
}

func newResponsiveCmd(g *globals) *cobra.Command {
	var slow bool
	cmd := &cobra.Command{
		Use:   "responsive <src>",
		Short: "Print src, srcset and sizes for a card image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := imageurl.NewBuilder(g.cfg.CDNDomain, g.cfg.SlowQuality)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(b.Responsive(args[0], slow))
		},
	}
	cmd.Flags().BoolVar(&slow, "slow", false, "treat the connection as slow")
	return cmd
}
