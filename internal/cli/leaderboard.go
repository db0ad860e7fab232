package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"propboard/internal/app"
	"propboard/internal/domain"
	"propboard/internal/registry"
)

// NewLeaderboardCmd prints the current standings from the configured store.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the current standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			blobs, closeStore, err := openBlobStore(cmd.Context(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer closeStore()

			lb, err := newBoard(cfg, blobs, logger, app.NopMetrics{}).Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(lb)
			}
			return printLeaderboard(cmd.OutOrStdout(), lb)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printLeaderboard(w io.Writer, lb domain.Leaderboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tCORRECT")
	for _, s := range lb.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%d / %d\n", s.Rank, s.Name, s.Score, lb.TotalQuestions)
	}
	return tw.Flush()
}

// NewValidateCmd checks the config file and the compiled-in registry.
func NewValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate config and the contest registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			reg := registry.SuperBowlLX()
			fmt.Fprintf(cmd.OutOrStdout(), "config ok (store=%s)\nregistry ok (%d questions, %d players)\n",
				cfg.Store.Driver, reg.NumQuestions(), len(reg.Players()))
			return nil
		},
	}
}
