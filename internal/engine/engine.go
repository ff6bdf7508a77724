// Package engine orchestrates the sync pipeline: planning windows,
// downloading raw files into the staging directory, and loading staged files
// into the store. Download and Load are deliberately separate entry points;
// a load can run long after the download that produced its files.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketgrid/nsesync/internal/fetcher"
	"github.com/marketgrid/nsesync/internal/nse"
	"github.com/marketgrid/nsesync/internal/plan"
	"github.com/marketgrid/nsesync/internal/store"
)

// marketSymbol labels run-log entries for the market-wide daily feeds, which
// have no instrument of their own.
const marketSymbol = "MARKET"

// Engine wires the planner, fetcher and store together.
type Engine struct {
	store      store.Store
	fetch      fetcher.Fetcher
	planner    *plan.Planner
	ep         nse.Endpoints
	stagingDir string
	shares     []string
	indexes    map[string]bool
	indexList  []string
}

// New creates an Engine. Shares get equity and futures treatment; indexes
// get futures contracts plus manually staged index history files.
func New(st store.Store, f fetcher.Fetcher, p *plan.Planner, ep nse.Endpoints, stagingDir string, shares, indexes []string) *Engine {
	idx := make(map[string]bool, len(indexes))
	for _, s := range indexes {
		idx[s] = true
	}
	return &Engine{
		store:      st,
		fetch:      f,
		planner:    p,
		ep:         ep,
		stagingDir: stagingDir,
		shares:     shares,
		indexes:    idx,
		indexList:  indexes,
	}
}

// Options selects the date range and optionally narrows the symbol set.
type Options struct {
	From    time.Time
	To      time.Time
	Symbols []string
}

// Summary accumulates per-run counters for the user-facing report.
type Summary struct {
	Downloaded int
	Loaded     int
	Skipped    int
	Failed     int
	RowsLoaded int64
}

func (e *Engine) symbols(opts Options, includeIndexes bool) []string {
	all := append(append([]string{}, e.shares...), e.indexList...)
	if len(opts.Symbols) > 0 {
		all = opts.Symbols
	}
	var out []string
	for _, s := range all {
		if e.indexes[s] && !includeIndexes {
			continue
		}
		out = append(out, s)
	}
	return out
}

// skippable reports whether a planning error means "nothing to do" rather
// than a failure.
func skippable(err error) bool {
	return eris.Is(err, plan.ErrNoData) || eris.Is(err, plan.ErrNotYetAvailable)
}

// Download plans and fetches every raw file the range needs, one symbol at a
// time, then the market-wide daily feeds.
func (e *Engine) Download(ctx context.Context, opts Options) (*Summary, error) {
	if err := os.MkdirAll(e.stagingDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "engine: create staging dir")
	}

	sum := &Summary{}
	for _, sym := range e.symbols(opts, true) {
		e.downloadSymbol(ctx, sym, opts, sum)
	}
	e.downloadDaily(ctx, plan.Delivery, store.CategoryDelivery, opts, sum)
	e.downloadDaily(ctx, plan.BhavCopy, store.CategoryBhavCopy, opts, sum)
	return sum, nil
}

func (e *Engine) downloadSymbol(ctx context.Context, sym string, opts Options, sum *Summary) {
	log := zap.L().With(zap.String("symbol", sym))

	e.downloadDeliveryReport(ctx, sym, opts, sum, log)
	// Index history files are staged by hand; only shares have a cash
	// market download.
	if !e.indexes[sym] {
		e.downloadEquity(ctx, sym, opts, sum, log)
	}
	e.downloadFutures(ctx, sym, opts, sum, log)
}

// downloadDeliveryReport fetches the per-symbol deliverable position report
// over the raw requested range. The report is a per-symbol reference file;
// the delivery table itself is fed from the market-wide MTO archive.
func (e *Engine) downloadDeliveryReport(ctx context.Context, sym string, opts Options, sum *Summary, log *zap.Logger) {
	url := e.ep.DeliveryCSVURL(sym, opts.From, opts.To)
	path := filepath.Join(e.stagingDir, nse.DeliveryReportName(sym, opts.From, opts.To))
	if _, err := e.fetch.DownloadToFile(ctx, url, path); err != nil {
		if eris.Is(err, fetcher.ErrNotFound) {
			log.Debug("no deliverable report for range")
			_ = os.Remove(path)
			sum.Skipped++
			return
		}
		log.Error("deliverable report download failed", zap.Error(err))
		_ = os.Remove(path)
		sum.Failed++
		return
	}
	sum.Downloaded++
}

func (e *Engine) downloadEquity(ctx context.Context, sym string, opts Options, sum *Summary, log *zap.Logger) {
	watermark, err := e.store.LatestDate(ctx, store.CategoryEquity, sym)
	if err != nil {
		log.Error("equity watermark lookup failed", zap.Error(err))
		sum.Failed++
		return
	}
	windows, err := e.planner.EquityWindows(sym, opts.From, opts.To, watermark)
	if err != nil {
		if skippable(err) {
			log.Info("equity: nothing to download", zap.String("reason", err.Error()))
			sum.Skipped++
			return
		}
		log.Error("equity planning failed", zap.Error(err))
		sum.Failed++
		return
	}
	for _, w := range windows {
		url := e.ep.EquityHistoryURL(sym, w.From, w.To)
		path := filepath.Join(e.stagingDir, nse.EquityQuoteName(sym, w.From, w.To))
		if _, err := e.fetch.DownloadToFile(ctx, url, path); err != nil {
			log.Error("equity download failed",
				zap.String("from", w.From.Format("2006-01-02")),
				zap.String("to", w.To.Format("2006-01-02")),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}
		sum.Downloaded++
	}
}

func (e *Engine) downloadFutures(ctx context.Context, sym string, opts Options, sum *Summary, log *zap.Logger) {
	watermark, err := e.store.LatestDate(ctx, store.CategoryEquity, sym)
	if err != nil {
		log.Error("futures watermark lookup failed", zap.Error(err))
		sum.Failed++
		return
	}
	windows, err := e.planner.FuturesWindows(sym, e.indexes[sym], opts.From, opts.To, watermark)
	if err != nil {
		if skippable(err) {
			log.Info("futures: nothing to download", zap.String("reason", err.Error()))
			sum.Skipped++
			return
		}
		log.Error("futures planning failed", zap.Error(err))
		sum.Failed++
		return
	}
	for _, w := range windows {
		url := e.ep.FuturesHistoryURL(sym, w.From, w.To, w.Expiry, w.Index)
		path := filepath.Join(e.stagingDir, nse.FuturesQuoteName(sym, w.From, w.To, w.Expiry))
		if _, err := e.fetch.DownloadToFile(ctx, url, path); err != nil {
			log.Error("futures download failed",
				zap.String("expiry", w.Expiry),
				zap.Error(err),
			)
			sum.Failed++
			continue
		}
		sum.Downloaded++
	}
}

func (e *Engine) downloadDaily(ctx context.Context, series plan.Series, cat store.Category, opts Options, sum *Summary) {
	log := zap.L().With(zap.String("series", series.String()))

	watermark, err := e.store.LatestDate(ctx, cat, "")
	if err != nil {
		log.Error("watermark lookup failed", zap.Error(err))
		sum.Failed++
		return
	}
	windows, err := e.planner.DailyWindows(series, opts.From, opts.To, watermark)
	if err != nil {
		if skippable(err) {
			log.Info("nothing to download", zap.String("reason", err.Error()))
			sum.Skipped++
			return
		}
		log.Error("planning failed", zap.Error(err))
		sum.Failed++
		return
	}
	for _, w := range windows {
		var url, name string
		if series == plan.Delivery {
			url = e.ep.DeliveryArchiveURL(w.From)
			name = nse.DeliveryDownloadName(w.From)
		} else {
			url = e.ep.BhavArchiveURL(w.From)
			name = nse.BhavArchiveName(w.From)
		}
		path := filepath.Join(e.stagingDir, name)
		if _, err := e.fetch.DownloadToFile(ctx, url, path); err != nil {
			if eris.Is(err, fetcher.ErrNotFound) {
				// Holiday: the day's file was never published.
				log.Debug("no file for day", zap.String("day", w.From.Format("2006-01-02")))
				_ = os.Remove(path)
				sum.Skipped++
				continue
			}
			log.Error("download failed",
				zap.String("day", w.From.Format("2006-01-02")),
				zap.Error(err),
			)
			_ = os.Remove(path)
			sum.Failed++
			continue
		}
		sum.Downloaded++
	}
}

// Sync runs Download and then Load over the same options, checking between
// the phases that every requested series has staged files.
func (e *Engine) Sync(ctx context.Context, opts Options) (*Summary, error) {
	down, err := e.Download(ctx, opts)
	if err != nil {
		return down, err
	}
	missing, err := e.Ready(opts)
	if err != nil {
		return down, err
	}
	for _, m := range missing {
		zap.L().Warn("no staged files for series", zap.String("series", m))
	}
	loaded, err := e.Load(ctx, opts)
	if err != nil {
		return loaded, err
	}
	loaded.Downloaded = down.Downloaded
	loaded.Skipped += down.Skipped
	loaded.Failed += down.Failed
	return loaded, nil
}
