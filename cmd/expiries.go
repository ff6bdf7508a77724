package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var expiriesCmd = &cobra.Command{
	Use:   "expiries",
	Short: "Print the monthly futures expiry calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		cal, err := buildCalendar()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tMONTH\tEXPIRY")
		for i := 1; i <= cal.Len(); i++ {
			e, err := cal.For(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%s %d\t%s\n", i, e.Month, e.Year, e.Label())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(expiriesCmd)
}
