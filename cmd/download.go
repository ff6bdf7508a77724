package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download raw NSE files into the staging directory",
	Long: `Download plans the windows each series needs past its watermark and
fetches the raw files into the staging directory. It does not touch the
database tables; run "load" afterwards (or "sync" for both phases).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "download"))

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

		log.Info("starting download",
			zap.String("from", opts.From.Format(flagDateLayout)),
			zap.String("to", opts.To.Format(flagDateLayout)),
			zap.Strings("symbols", opts.Symbols),
		)

		sum, err := e.Download(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "download")
		}

		fmt.Printf("Downloaded %d files (%d skipped, %d failed)\n", sum.Downloaded, sum.Skipped, sum.Failed)
		return nil
	},
}

func init() {
	addRangeFlags(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}
