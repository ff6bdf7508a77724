package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/marketgrid/nsesync/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watermarks and recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := printWatermarks(ctx, st); err != nil {
			return err
		}
		return printRuns(ctx, st, limit)
	},
}

func printWatermarks(ctx context.Context, st store.Store) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tCATEGORY\tWATERMARK")
	for _, sym := range append(append([]string{}, cfg.Symbols.Shares...), cfg.Symbols.Indexes...) {
		d, err := st.LatestDate(ctx, store.CategoryEquity, sym)
		if err != nil {
			return eris.Wrapf(err, "watermark for %s", sym)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", sym, store.CategoryEquity, formatWatermark(d))
	}
	for _, cat := range []store.Category{store.CategoryDelivery, store.CategoryBhavCopy} {
		d, err := st.LatestDate(ctx, cat, "")
		if err != nil {
			return eris.Wrapf(err, "watermark for %s", cat)
		}
		fmt.Fprintf(w, "-\t%s\t%s\n", cat, formatWatermark(d))
	}
	return w.Flush()
}

func formatWatermark(d time.Time) string {
	if d.Equal(store.Epoch) {
		return "(empty)"
	}
	return d.Format(flagDateLayout)
}

func printRuns(ctx context.Context, st store.Store, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return eris.Wrap(err, "list runs")
	}
	if len(runs) == 0 {
		fmt.Println("\nNo sync runs recorded.")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSYMBOL\tSERIES\tSTATUS\tROWS\tERROR")
	for _, r := range runs {
		errMsg := r.Error
		if len(errMsg) > 60 {
			errMsg = errMsg[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Symbol, r.Series, r.Status, r.Rows, errMsg)
	}
	return w.Flush()
}

func init() {
	statusCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(statusCmd)
}
