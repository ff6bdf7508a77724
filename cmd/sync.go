package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download and load in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "sync"))

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

		log.Info("starting sync",
			zap.String("from", opts.From.Format(flagDateLayout)),
			zap.String("to", opts.To.Format(flagDateLayout)),
		)

		sum, err := e.Sync(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "sync")
		}

		fmt.Printf("Downloaded %d files, loaded %d series, %d rows (%d skipped, %d failed)\n",
			sum.Downloaded, sum.Loaded, sum.RowsLoaded, sum.Skipped, sum.Failed)
		return nil
	},
}

func init() {
	addRangeFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}
