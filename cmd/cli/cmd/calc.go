// Package cmd - calc and runs commands
package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/internal/logging"
	"github.com/warp/commission-engine/store"
	"github.com/warp/commission-engine/store/sqlite"
)

// calcCmd groups the calculation subcommands.
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a calculation track",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var calcQuarterlyCmd = &cobra.Command{
	Use:   "quarterly <quarter>",
	Short: "Run the quarterly bonus calculation",
	Long: `Run the quarterly weighted-bucket bonus calculation for one quarter.

The quarter must have a stored plan config and imported per-rep actuals.
Re-running a quarter replaces its entries.

Examples:
  commission calc quarterly 2025-Q1`,
	Args: cobra.ExactArgs(1),
	RunE: runCalcQuarterly,
}

var calcMonthlyCmd = &cobra.Command{
	Use:   "monthly <month>",
	Short: "Run the monthly commission calculation",
	Long: `Run the monthly tiered-rate commission calculation for one month.

The month must have a stored rate snapshot and imported orders.
Re-running a month replaces its records.

Examples:
  commission calc monthly 2025-03`,
	Args: cobra.ExactArgs(1),
	RunE: runCalcMonthly,
}

var runsLimit int

// runsCmd lists recent calculation runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent calculation runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	calcCmd.AddCommand(calcQuarterlyCmd)
	calcCmd.AddCommand(calcMonthlyCmd)
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
}

func openEngine() (*sqlite.Store, *engine.Engine, error) {
	st, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	return st, engine.New(st, logging.Logger), nil
}

func runCalcQuarterly(cmd *cobra.Command, args []string) error {
	quarter, err := comp.ParseQuarter(args[0])
	if err != nil {
		return err
	}

	st, eng, err := openEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := eng.RunQuarterly(context.Background(), quarter)
	if err != nil {
		return fmt.Errorf("quarterly run failed: %w", err)
	}

	fmt.Printf("Quarter %s: %d reps processed, %d entries written, total paid %s\n",
		quarter, res.Run.RecordsProcessed, res.Run.RecordsWritten, res.Run.TotalPaid)

	sort.Slice(res.Results, func(i, j int) bool { return res.Results[i].Rep < res.Results[j].Rep })
	for _, rr := range res.Results {
		fmt.Printf("  %-12s %-28s payout %s (cap %s)\n",
			rr.Rep, rr.Title, rr.TotalPayout, rr.MaxBonus)
	}

	if len(res.RepErrors) > 0 {
		fmt.Printf("\n%d reps skipped for broken configuration:\n", len(res.RepErrors))
		reps := make([]comp.RepID, 0, len(res.RepErrors))
		for rep := range res.RepErrors {
			reps = append(reps, rep)
		}
		sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })
		for _, rep := range reps {
			fmt.Printf("  %-12s %s\n", rep, res.RepErrors[rep])
		}
	}
	return nil
}

func runCalcMonthly(cmd *cobra.Command, args []string) error {
	month, err := comp.ParseMonth(args[0])
	if err != nil {
		return err
	}

	st, eng, err := openEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := eng.RunMonthly(context.Background(), month)
	if err != nil {
		return fmt.Errorf("monthly run failed: %w", err)
	}

	s := res.Summary
	fmt.Printf("Month %s: %d orders processed, %d commissions calculated, total %s\n",
		month, s.OrdersProcessed, s.CommissionsCalculated, s.TotalCommission)

	reps := make([]comp.RepID, 0, len(s.PerRep))
	for rep := range s.PerRep {
		reps = append(reps, rep)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })
	for _, rep := range reps {
		rt := s.PerRep[rep]
		fmt.Printf("  %-12s %3d orders  %s\n", rep, rt.Orders, rt.Commission)
	}

	if len(s.Skipped) > 0 {
		fmt.Println("\nSkipped:")
		reasons := make([]comp.SkipReason, 0, len(s.Skipped))
		for reason := range s.Skipped {
			reasons = append(reasons, reason)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
		for _, reason := range reasons {
			fmt.Printf("  %-20s %d\n", reason, s.Skipped[reason])
		}
	}
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, _, err := openEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(context.Background(), runsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %-9s %-8s %-9s written=%-4d paid=%s",
			run.StartedAt.Format(time.RFC3339), run.Kind, run.Period,
			run.Status, run.RecordsWritten, run.TotalPaid)
		if run.Status == store.RunFailed {
			line += "  error=" + run.Error
		}
		fmt.Println(line)
	}
	return nil
}
