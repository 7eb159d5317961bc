package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/greenbelt-labs/ejatlas/internal/model"
	"github.com/greenbelt-labs/ejatlas/internal/present"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored analysis runs",
	Long:  "Commands for listing past runs and re-reading their stored per-grade summaries.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("runs"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		present.WriteRunsTable(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its stored summaries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("runs"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		fmt.Printf("Run %s: %s / %s, year %d (created %s)\n\n",
			run.ID, run.State, run.County, run.Year,
			run.CreatedAt.Format("2006-01-02 15:04"))

		areas, err := st.GetSummaries(ctx, run.ID, model.AnalysisIndicators)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		obs, err := st.GetSummaries(ctx, run.ID, model.AnalysisObservations)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		present.WriteSummaryTable(os.Stdout, "Indicators by grade", meanFields(areas), areas)
		fmt.Println()
		present.WriteSummaryTable(os.Stdout, "Observations by grade", nil, obs)
		return nil
	},
}

// meanFields recovers the field columns from stored summaries, since the
// store keeps means keyed by field but not the original field order.
func meanFields(groups []model.GroupSummary) []string {
	seen := map[string]bool{}
	var fields []string
	for _, g := range groups {
		for f := range g.Means {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "max number of runs to display")
	runsShowCmd.Flags().Bool("json", false, "print the run record as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
