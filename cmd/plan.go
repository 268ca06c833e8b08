package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/haulage/core/plan"
	"github.com/kilianp07/haulage/core/planner"
)

var budget time.Duration

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan every instance task over the fleet",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().DurationVar(&budget, "budget", 0, "planning time budget, defaults to search.time_budget_ms")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.Serve(ctx)

	res, err := svc.Plan(ctx, budget)
	if err != nil {
		return err
	}
	return printPlans(cmd.OutOrStdout(), res)
}

func printPlans(w io.Writer, res planner.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, vp := range res.Plans {
		fmt.Fprintf(tw, "vehicle %d\tdistance %.1f\tcost %.1f\n", vp.VehicleID, vp.Distance, vp.Cost)
		for _, st := range vp.Steps {
			printStep(tw, st)
		}
	}
	fmt.Fprintf(tw, "total cost\t%.1f\n", res.Cost)
	fmt.Fprintf(tw, "iterations\t%d (%s)\n", res.Search.Iterations, res.Search.Outcome)
	return tw.Flush()
}

func printStep(w io.Writer, st plan.Step) {
	if st.Task == nil {
		fmt.Fprintf(w, "  %s\t%d\n", st.Kind, st.City)
		return
	}
	fmt.Fprintf(w, "  %s\t%d\ttask %d (w=%d)\n", st.Kind, st.City, st.Task.ID, st.Task.Weight)
}
