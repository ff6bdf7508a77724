package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/marketgrid/nsesync/internal/fetcher"
	"github.com/marketgrid/nsesync/internal/normalize"
	"github.com/marketgrid/nsesync/internal/nse"
	"github.com/marketgrid/nsesync/internal/plan"
	"github.com/marketgrid/nsesync/internal/store"
)

// Load stages any raw downloads still in transit form, then parses, filters
// and upserts everything in the staging directory that the requested range
// covers. It assumes Download (or a manual file drop) already ran; missing
// daily files are skipped as holidays, missing quote files as not ready.
func (e *Engine) Load(ctx context.Context, opts Options) (*Summary, error) {
	if err := e.stage(); err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, sym := range e.symbols(opts, false) {
		e.loadQuoteSeries(ctx, sym, "EQUITY", store.KindEquity, nse.EquityQuoteGlob(sym), opts, sum)
	}
	for _, sym := range e.symbols(opts, true) {
		e.loadQuoteSeries(ctx, sym, "FUTURES", store.KindFutures, nse.FuturesQuoteGlob(sym), opts, sum)
	}
	for _, sym := range e.indexList {
		if len(opts.Symbols) > 0 && !contains(opts.Symbols, sym) {
			continue
		}
		// Index history files are staged by hand under the bare symbol
		// prefix; the Quote- prefixes keep futures files out of this glob.
		e.loadQuoteSeries(ctx, sym, "INDEX", store.KindIndex, sym+"*.csv", opts, sum)
	}
	e.loadDaily(ctx, plan.Delivery, opts, sum)
	e.loadDaily(ctx, plan.BhavCopy, opts, sum)
	return sum, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// stage converts raw downloads into their parseable form: delivery reports
// are renamed from the numeric-month download name to the staged name, and
// bhavcopy archives are extracted then deleted.
func (e *Engine) stage() error {
	deliveries, err := filepath.Glob(filepath.Join(e.stagingDir, "DELIVERYDATA_*.csv"))
	if err != nil {
		return eris.Wrap(err, "engine: glob delivery files")
	}
	for _, path := range deliveries {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "DELIVERYDATA_"), ".csv")
		day, err := time.ParseInLocation("02012006", stamp, time.Local)
		if err != nil {
			// Already in staged (alphabetic month) form.
			continue
		}
		staged := filepath.Join(e.stagingDir, nse.DeliveryStagedName(day))
		if err := os.Rename(path, staged); err != nil {
			return eris.Wrapf(err, "engine: stage %s", path)
		}
	}

	archives, err := filepath.Glob(filepath.Join(e.stagingDir, "bhavcopy_*.zip"))
	if err != nil {
		return eris.Wrap(err, "engine: glob bhavcopy archives")
	}
	for _, path := range archives {
		if _, err := fetcher.ExtractZIPSingle(path, e.stagingDir); err != nil {
			// Some archives carry extra files next to the bhavcopy CSV.
			if _, err := fetcher.ExtractZIP(path, e.stagingDir); err != nil {
				return eris.Wrapf(err, "engine: extract %s", path)
			}
		}
		if err := os.Remove(path); err != nil {
			return eris.Wrapf(err, "engine: remove %s", path)
		}
	}
	return nil
}

func (e *Engine) loadQuoteSeries(ctx context.Context, sym, series string, kind store.Kind, glob string, opts Options, sum *Summary) {
	log := zap.L().With(zap.String("symbol", sym), zap.String("series", series))

	files, err := filepath.Glob(filepath.Join(e.stagingDir, glob))
	if err != nil {
		log.Error("glob failed", zap.Error(err))
		sum.Failed++
		return
	}
	if len(files) == 0 {
		log.Warn("no staged files, skipping")
		sum.Skipped++
		return
	}
	orderByWindowStart(files)

	run, err := e.store.StartRun(ctx, sym, series)
	if err != nil {
		log.Error("run log failed", zap.Error(err))
		sum.Failed++
		return
	}

	var rows int64
	for _, path := range files {
		tbl, err := normalize.ParseQuoteFile(path)
		if err != nil {
			e.failRun(ctx, run, log, fmt.Sprintf("parse %s: %v", filepath.Base(path), err), sum)
			return
		}
		filtered := normalize.Filter(tbl, opts.From, opts.To)
		n, err := e.store.UpsertTable(ctx, kind, sym, filtered)
		if err != nil {
			e.failRun(ctx, run, log, fmt.Sprintf("upsert %s: %v", filepath.Base(path), err), sum)
			return
		}
		rows += n
	}

	if err := e.store.CompleteRun(ctx, run.ID, rows); err != nil {
		log.Error("run log failed", zap.Error(err))
	}
	log.Info("loaded", zap.Int64("rows", rows), zap.Int("files", len(files)))
	sum.Loaded++
	sum.RowsLoaded += rows
}

// fileDateStamp matches the dd-MM-yyyy window stamps embedded in staged
// quote file names. The later dd-Mon-yyyy expiry stamp in futures names does
// not match.
var fileDateStamp = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)

// orderByWindowStart sorts staged files oldest window first, so a failure
// partway through leaves the watermark at a contiguous "loaded up to here"
// point instead of past a gap. The names sort lexically newest-year-first
// because the stamp opens with the day. Files without a stamp keep their
// glob order, ahead of stamped ones.
func orderByWindowStart(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		return windowStart(files[i]).Before(windowStart(files[j]))
	})
}

func windowStart(path string) time.Time {
	m := fileDateStamp.FindString(filepath.Base(path))
	if m == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("02-01-2006", m, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (e *Engine) loadDaily(ctx context.Context, series plan.Series, opts Options, sum *Summary) {
	log := zap.L().With(zap.String("series", series.String()))

	run, err := e.store.StartRun(ctx, marketSymbol, series.String())
	if err != nil {
		log.Error("run log failed", zap.Error(err))
		sum.Failed++
		return
	}

	var rows int64
	for day := midnight(opts.From); !day.After(midnight(opts.To)); day = day.AddDate(0, 0, 1) {
		var tbl *normalize.Table
		var kind store.Kind
		if series == plan.Delivery {
			kind = store.KindDelivery
			tbl, err = normalize.ParseDeliveryFile(filepath.Join(e.stagingDir, nse.DeliveryStagedName(day)), day)
		} else {
			kind = store.KindBhavCopy
			tbl, err = normalize.ParseBhavFile(filepath.Join(e.stagingDir, nse.BhavStagedName(day)), day)
		}
		if err != nil {
			e.failRun(ctx, run, log, fmt.Sprintf("parse %s: %v", day.Format("2006-01-02"), err), sum)
			return
		}
		filtered := normalize.Filter(tbl, day, day)
		n, err := e.store.UpsertTable(ctx, kind, "", filtered)
		if err != nil {
			e.failRun(ctx, run, log, fmt.Sprintf("upsert %s: %v", day.Format("2006-01-02"), err), sum)
			return
		}
		rows += n
	}

	if err := e.store.CompleteRun(ctx, run.ID, rows); err != nil {
		log.Error("run log failed", zap.Error(err))
	}
	log.Info("loaded", zap.Int64("rows", rows))
	sum.Loaded++
	sum.RowsLoaded += rows
}

func (e *Engine) failRun(ctx context.Context, run *store.Run, log *zap.Logger, msg string, sum *Summary) {
	log.Error("load failed", zap.String("error", msg))
	if err := e.store.FailRun(ctx, run.ID, msg); err != nil {
		log.Error("run log failed", zap.Error(err))
	}
	sum.Failed++
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// Ready reports which quote series have no staged files for the requested
// symbols. An empty result means the load phase has something to work with
// for every symbol.
func (e *Engine) Ready(opts Options) ([]string, error) {
	var missing []string
	check := func(sym, series, glob string) error {
		files, err := filepath.Glob(filepath.Join(e.stagingDir, glob))
		if err != nil {
			return eris.Wrap(err, "engine: glob staged files")
		}
		if len(files) == 0 {
			missing = append(missing, sym+"/"+series)
		}
		return nil
	}
	for _, sym := range e.symbols(opts, false) {
		if err := check(sym, "EQUITY", nse.EquityQuoteGlob(sym)); err != nil {
			return nil, err
		}
	}
	for _, sym := range e.symbols(opts, true) {
		if err := check(sym, "FUTURES", nse.FuturesQuoteGlob(sym)); err != nil {
			return nil, err
		}
	}
	return missing, nil
}
