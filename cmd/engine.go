package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/marketgrid/nsesync/internal/engine"
	"github.com/marketgrid/nsesync/internal/expiry"
	"github.com/marketgrid/nsesync/internal/fetcher"
	"github.com/marketgrid/nsesync/internal/nse"
	"github.com/marketgrid/nsesync/internal/plan"
	"github.com/marketgrid/nsesync/internal/store"
)

const flagDateLayout = "2006-01-02"

// addRangeFlags registers the date range and symbol flags shared by the
// download, load and sync commands.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start of the date range (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end of the date range (YYYY-MM-DD, default today)")
	cmd.Flags().StringSlice("symbols", nil, "restrict to these symbols (default: configured set)")
	_ = cmd.MarkFlagRequired("from")
}

// parseRangeOpts reads the shared flags into engine options.
func parseRangeOpts(cmd *cobra.Command) (engine.Options, error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	symbols, _ := cmd.Flags().GetStringSlice("symbols")

	from, err := time.ParseInLocation(flagDateLayout, fromStr, time.Local)
	if err != nil {
		return engine.Options{}, eris.Wrapf(err, "invalid --from %q", fromStr)
	}
	to := time.Now()
	if toStr != "" {
		to, err = time.ParseInLocation(flagDateLayout, toStr, time.Local)
		if err != nil {
			return engine.Options{}, eris.Wrapf(err, "invalid --to %q", toStr)
		}
	}
	if to.Before(from) {
		return engine.Options{}, eris.Errorf("--to %s is before --from %s", toStr, fromStr)
	}
	return engine.Options{From: from, To: to, Symbols: symbols}, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

func buildCalendar() (*expiry.Calendar, error) {
	if cfg.Expiry.ExtensionFile != "" {
		return expiry.NewCalendarWithExtension(cfg.Expiry.ExtensionFile)
	}
	return expiry.NewCalendar()
}

func buildEngine(st store.Store) (*engine.Engine, error) {
	cal, err := buildCalendar()
	if err != nil {
		return nil, err
	}
	planner := plan.New(cal, plan.Policy{
		AvailableAfterHour: cfg.NSE.AvailableAfterHour,
		Now:                time.Now,
	})
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.NSE.UserAgent,
		Timeout:      time.Duration(cfg.NSE.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.NSE.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	ep := nse.Endpoints{APIBase: cfg.NSE.APIBase, ArchiveBase: cfg.NSE.ArchiveBase}
	return engine.New(st, f, planner, ep, cfg.Data.StagingDir, cfg.Symbols.Shares, cfg.Symbols.Indexes), nil
}
