package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/haulage/app"
	"github.com/kilianp07/haulage/core/auction"
	"github.com/kilianp07/haulage/core/events"
	"github.com/kilianp07/haulage/core/plan"
	"github.com/kilianp07/haulage/infra/logger"
)

var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "Auction every instance task between the agent and a naive opponent",
	RunE:  runAuction,
}

func init() {
	rootCmd.AddCommand(auctionCmd)
}

func runAuction(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.Serve(ctx)

	done := make(chan struct{})
	sub := svc.Bus().Subscribe()
	go func() {
		defer close(done)
		logAwards(sub, logger.New("auction-cmd"))
	}()

	rep, err := svc.Auction(ctx)
	svc.Bus().Unsubscribe(sub)
	<-done
	if err != nil {
		return err
	}
	return printAuction(cmd.OutOrStdout(), rep)
}

func logAwards(sub <-chan events.Event, log logger.Logger) {
	for e := range sub {
		if a, ok := e.(events.AwardEvent); ok {
			log.Infof("task %d awarded to %d for %d", a.Task.ID, a.Winner, a.Price)
		}
	}
}

func printAuction(w io.Writer, rep app.AuctionReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "task\tagent\topponent\twinner")
	for _, o := range rep.Outcomes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.Task.ID, bidText(o, app.AgentID), bidText(o, app.OpponentID), winnerText(o.Winner))
	}
	fmt.Fprintln(tw)
	best := rep.Final.Best
	p := best.Problem()
	for i := 0; i < best.NumRoutes(); i++ {
		v := p.Vehicle(i)
		fmt.Fprintf(tw, "vehicle %d\tcost %.1f\n", v.ID, best.RouteCost(i))
		for _, st := range plan.MaterializeMoves(best.Route(i), v.Home, p.Oracle()) {
			printStep(tw, st)
		}
	}
	fmt.Fprintf(tw, "won\t%d of %d\n", rep.AgentWins, len(rep.Outcomes))
	fmt.Fprintf(tw, "revenue\t%d\n", rep.Revenue)
	fmt.Fprintf(tw, "cost\t%.1f\n", rep.Cost)
	fmt.Fprintf(tw, "profit\t%.1f\n", rep.Profit)
	if rep.Recorded > 0 {
		fmt.Fprintf(tw, "history\t%d won of %d recorded\n", rep.RecordedWins, rep.Recorded)
	}
	return tw.Flush()
}

func bidText(o auction.Outcome, id int) string {
	b, ok := o.Bids[id]
	if !ok {
		return "-"
	}
	return fmt.Sprint(b)
}

func winnerText(id int) string {
	switch id {
	case app.AgentID:
		return "agent"
	case app.OpponentID:
		return "opponent"
	default:
		return "none"
	}
}
