package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Normalize staged files and load them into the store",
	Long: `Load stages the raw files already present in the staging directory
(renaming delivery files, extracting bhavcopy archives), parses and filters
them to the requested window and upserts the rows. Run "download" first to
populate the staging directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "load"))

		opts, err := parseRangeOpts(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}

		e, err := buildEngine(st)
		if err != nil {
			return err
		}

		missing, err := e.Ready(opts)
		if err != nil {
			return eris.Wrap(err, "readiness check")
		}
		for _, m := range missing {
			log.Warn("no staged files for series", zap.String("series", m))
		}

		sum, err := e.Load(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "load")
		}

		fmt.Printf("Loaded %d series, %d rows (%d skipped, %d failed)\n", sum.Loaded, sum.RowsLoaded, sum.Skipped, sum.Failed)
		return nil
	},
}

func init() {
	addRangeFlags(loadCmd)
	rootCmd.AddCommand(loadCmd)
}
