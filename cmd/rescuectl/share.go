package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rescuedogs/rescue-edge/internal/favorites"
)

func newShareCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode or decode favorites share codes",
	}

	encode := &cobra.Command{
		Use:   "encode <id>...",
		Short: "Print the share code and URL for dog IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, a := range args {
				for p := range strings.SplitSeq(a, ",") {
					if p = strings.TrimSpace(p); p == "" {
						continue
					}
					id, err := strconv.Atoi(p)
					if err != nil {
						return fmt.Errorf("invalid id %q", p)
					}
					ids = append(ids, id)
				}
			}
			code, err := favorites.Compress(ids)
			if err != nil {
				return err
			}
			u, err := favorites.ShareURL(g.cfg.SiteURL, ids)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", code, u)
			return err
		},
	}

	decode := &cobra.Command{
		Use:   "decode <code>",
		Short: "Print the dog IDs in a share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := favorites.Decompress(args[0])
			if err != nil {
				return err
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.Itoa(id)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, ","))
			return err
		},
	}

	cmd.AddCommand(encode, decode)
	return cmd
}
