// Command giftparse runs gift-money sentences through the offline parser
// and writes the results as JSON, CSV or XLSX. It can also save the parsed
// records, search them, route them through the assistant, print the stored
// year totals, or archive the stored ledger on a cron schedule.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/gift-ledger/internal/domain/batch"
	"github.com/FACorreiaa/gift-ledger/internal/domain/export"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/repository"
	"github.com/FACorreiaa/gift-ledger/internal/domain/ledger/search"
	"github.com/FACorreiaa/gift-ledger/pkg/config"
	"github.com/FACorreiaa/gift-ledger/pkg/cron"
	"github.com/FACorreiaa/gift-ledger/pkg/money"
	"github.com/FACorreiaa/gift-ledger/pkg/storage"
)

const (
	archiveJobName    = "archive-records"
	archiveJobTimeout = 5 * time.Minute
)

type options struct {
	ref         string
	in          string
	format      export.Format
	out         string
	save        bool
	query       searchQuery
	sel         selection
	analyze     bool
	stats       bool
	history     bool
	schedule    string
	runNow      bool
	metricsAddr string
}

func (o options) needsDatabase() bool {
	return o.save || o.stats || o.schedule != ""
}

// selection narrows the written rows and the archive to one direction and
// an inclusive date range.
type selection struct {
	scope    export.Scope
	from, to string
}

func (s selection) active() bool {
	return (s.scope != "" && s.scope != export.ScopeAll) || s.from != "" || s.to != ""
}

// results keeps the parsed results inside s; failures are dropped once s
// is active.
func (s selection) results(results []batch.Result) []batch.Result {
	if !s.active() {
		return results
	}
	out := make([]batch.Result, 0, len(results))
	for _, r := range results {
		if r.OK() && export.FromIntent(r.Intent).In(s.scope, s.from, s.to) {
			out = append(out, r)
		}
	}
	return out
}

// searchQuery is one of a full-text query, an exact contact or event, or an
// amount range in yuan.
type searchQuery struct {
	text    string
	contact string
	event   string
	min     float64
	max     float64
}

func (q searchQuery) modes() int {
	n := 0
	for _, set := range []bool{q.text != "", q.contact != "", q.event != "", q.min > 0 || q.max > 0} {
		if set {
			n++
		}
	}
	return n
}

func (q searchQuery) active() bool { return q.modes() > 0 }

func (q searchQuery) run(ix *search.Index, limit int) ([]search.Hit, error) {
	switch {
	case q.text != "":
		return ix.Search(q.text, limit)
	case q.contact != "":
		return ix.ByContact(q.contact, limit)
	case q.event != "":
		return ix.ByEvent(q.event, limit)
	default:
		hi := q.max
		if hi <= 0 {
			hi = math.MaxFloat64
		}
		return ix.AmountBetween(q.min, hi, limit)
	}
}

func parseOptions(args []string) (options, error) {
	var (
		opts   options
		format string
		scope  string
	)

	fs := flag.NewFlagSet("giftparse", flag.ContinueOnError)
	fs.StringVar(&opts.ref, "ref", "", "reference date YYYY-MM-DD for relative dates and -stats (default today)")
	fs.StringVar(&opts.in, "in", "", "input file: .txt lines, .csv with a text column, or .xlsx (default built-in samples)")
	fs.StringVar(&format, "format", string(export.FormatJSON), "output format: json, csv or xlsx")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")
	fs.StringVar(&scope, "scope", string(export.ScopeAll), "rows to write and archive: all, given or received")
	fs.StringVar(&opts.sel.from, "from", "", "only write and archive rows dated on or after YYYY-MM-DD")
	fs.StringVar(&opts.sel.to, "to", "", "only write and archive rows dated on or before YYYY-MM-DD")
	fs.BoolVar(&opts.save, "save", false, "save parsed records to the database")
	fs.StringVar(&opts.query.text, "search", "", "print parsed sentences matching this query instead of the batch output")
	fs.StringVar(&opts.query.contact, "contact", "", "print parsed sentences for exactly this contact")
	fs.StringVar(&opts.query.event, "event", "", "print parsed sentences of this event, e.g. 婚礼")
	fs.Float64Var(&opts.query.min, "min", 0, "print parsed sentences of at least this many yuan")
	fs.Float64Var(&opts.query.max, "max", 0, "print parsed sentences of at most this many yuan")
	fs.BoolVar(&opts.analyze, "analyze", false, "route sentences through the assistant and print the confirmation cards")
	fs.BoolVar(&opts.stats, "stats", false, "print the stored given, received and balance totals of the -ref year")
	fs.BoolVar(&opts.history, "history", false, "list archived exports")
	fs.StringVar(&opts.schedule, "schedule", "", "archive stored records on this cron schedule, e.g. @daily")
	fs.BoolVar(&opts.runNow, "run-now", false, "with -schedule, archive once at startup")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while scheduled")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return options{}, err
	}
	opts.format = f

	if opts.sel.scope, err = export.ParseScope(scope); err != nil {
		return options{}, err
	}
	for _, d := range []string{opts.sel.from, opts.sel.to} {
		if _, err := time.Parse("2006-01-02", d); d != "" && err != nil {
			return options{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
		}
	}
	if opts.sel.from != "" && opts.sel.to != "" && opts.sel.from > opts.sel.to {
		return options{}, fmt.Errorf("-from %s is after -to %s", opts.sel.from, opts.sel.to)
	}

	if opts.query.modes() > 1 {
		return options{}, errors.New("use only one of -search, -contact, -event or -min/-max")
	}
	if opts.query.min < 0 || opts.query.max < 0 || (opts.query.max > 0 && opts.query.min > opts.query.max) {
		return options{}, fmt.Errorf("invalid amount range %v to %v", opts.query.min, opts.query.max)
	}

	modes := 0
	for _, set := range []bool{opts.schedule != "", opts.analyze, opts.stats, opts.history, opts.query.active()} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return options{}, errors.New("-schedule, -analyze, -stats, -history and the search flags cannot be combined")
	}
	if opts.runNow && opts.schedule == "" {
		return options{}, errors.New("-run-now needs -schedule")
	}
	return opts, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("giftparse failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	deps, err := InitDependencies(ctx, cfg, logger, opts)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	if opts.schedule != "" {
		return runSchedule(ctx, deps, opts)
	}

	out, closeOut, err := openOutput(opts.out)
	if err != nil {
		return err
	}
	defer closeOut()

	switch {
	case opts.stats:
		return writeStats(ctx, deps, out)
	case opts.history:
		return writeHistory(ctx, deps, out)
	}

	sentences, err := readSentences(opts.in)
	if err != nil {
		return err
	}

	if opts.analyze {
		return analyzeAll(ctx, deps, sentences, out)
	}

	results := batch.Run(deps.Parser, sentences)
	summary := batch.Summarize(results)
	logger.Info("batch parsed",
		slog.Int("total", summary.Total),
		slog.Int("parsed", summary.Parsed),
		slog.Int("failed", summary.Failed),
	)

	selected := opts.sel.results(results)
	if opts.query.active() {
		err = searchResults(out, results, opts.query, logger)
	} else {
		err = writeResults(out, opts.format, selected)
	}
	if err != nil {
		return err
	}

	if deps.Archiver != nil {
		if _, err := deps.Archiver.Archive(ctx, exportRows(selected), opts.sel.scope, opts.format); err != nil {
			return err
		}
	}

	if opts.save {
		return saveResults(ctx, deps, results)
	}
	return nil
}

func readSentences(path string) ([]string, error) {
	if path == "" {
		return batch.Samples(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return batch.ReadFile(path, f)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// writeResults writes the whole batch, failures included, as JSON; CSV and
// XLSX carry the parsed rows only.
func writeResults(w io.Writer, format export.Format, results []batch.Result) error {
	if format == export.FormatJSON {
		return writeJSON(w, results)
	}
	return export.Write(w, format, exportRows(results))
}

func exportRows(results []batch.Result) []export.Row {
	parsed := batch.Parsed(results)
	rows := make([]export.Row, 0, len(parsed))
	for _, p := range parsed {
		rows = append(rows, export.FromIntent(p))
	}
	return rows
}

// searchResults indexes the parsed sentences and writes the hits for q.
// Document IDs are the 1-based input line numbers.
func searchResults(w io.Writer, results []batch.Result, q searchQuery, logger *slog.Logger) error {
	ix, err := search.NewIndex()
	if err != nil {
		return err
	}
	defer ix.Close()

	var docs []search.Document
	for i, r := range results {
		if r.OK() {
			docs = append(docs, search.DocumentFromIntent(strconv.Itoa(i+1), r.Input, r.Intent))
		}
	}
	if err := ix.Add(docs...); err != nil {
		return err
	}

	n, err := ix.Count()
	if err != nil {
		return fmt.Errorf("failed to count indexed sentences: %w", err)
	}
	hits, err := q.run(ix, int(n))
	if err != nil {
		return err
	}
	logger.Info("search finished",
		slog.Uint64("indexed", n),
		slog.Int("hits", len(hits)),
	)
	if hits == nil {
		hits = []search.Hit{}
	}

	return writeJSON(w, hits)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// yearStats is the stored ledger summary of one calendar year.
type yearStats struct {
	Year     int          `json:"year"`
	Count    int64        `json:"count"`
	Given    *money.Money `json:"given"`
	Received *money.Money `json:"received"`
	Balance  *money.Money `json:"balance"`
}

// writeStats prints the totals of the year the parser clock is in.
func writeStats(ctx context.Context, deps *Dependencies, w io.Writer) error {
	day := deps.Clock.Now()
	stats, err := deps.Ledger.YearStats(ctx, deps.OwnerID, day)
	if err != nil {
		return err
	}
	balance, err := stats.Balance()
	if err != nil {
		return err
	}
	return writeJSON(w, yearStats{
		Year:     day.Year(),
		Count:    stats.Count,
		Given:    stats.Given(),
		Received: stats.Received(),
		Balance:  balance,
	})
}

func writeHistory(ctx context.Context, deps *Dependencies, w io.Writer) error {
	if deps.Archiver == nil {
		return errors.New("-history needs EXPORT_ARCHIVE_DIR")
	}
	files, err := deps.Archiver.History(ctx)
	if err != nil {
		return err
	}
	if files == nil {
		files = []*storage.FileInfo{}
	}
	return writeJSON(w, files)
}

func analyzeAll(ctx context.Context, deps *Dependencies, sentences []string, w io.Writer) error {
	hints := deps.Hints(ctx)
	for _, s := range sentences {
		analysis, err := deps.Analyzer.Analyze(ctx, s, hints)
		if err != nil {
			fmt.Fprintf(w, "%s\n%v\n\n", s, err)
			continue
		}
		fmt.Fprintf(w, "%s\n%s\n", s, analysis.Display)
		if m := analysis.MatchedContact; m != "" && m != analysis.Intent.ContactName {
			fmt.Fprintf(w, "可能是：%s\n", m)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func saveResults(ctx context.Context, deps *Dependencies, results []batch.Result) error {
	saved := 0
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if _, err := deps.Ledger.SaveIntent(ctx, deps.OwnerID, r.Intent, r.Input); err != nil {
			return fmt.Errorf("failed to save %q: %w", r.Input, err)
		}
		saved++
	}
	deps.Logger.Info("records saved", slog.Int("count", saved))
	return nil
}

// archiveRecords exports the owner's stored records inside sel.
func archiveRecords(deps *Dependencies, format export.Format, sel selection) cron.Job {
	return func(ctx context.Context) error {
		recs, err := deps.Ledger.Records(ctx, deps.OwnerID, repository.Filter{})
		if err != nil {
			return err
		}
		rows := make([]export.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, export.FromRecord(r))
		}
		_, err = deps.Archiver.Archive(ctx, export.Select(rows, sel.scope, sel.from, sel.to), sel.scope, format)
		return err
	}
}

func runSchedule(ctx context.Context, deps *Dependencies, opts options) error {
	if deps.Archiver == nil {
		return errors.New("-schedule needs EXPORT_ARCHIVE_DIR")
	}

	scheduler := cron.NewScheduler(deps.Location, archiveJobTimeout, deps.Logger)
	if err := scheduler.Add(archiveJobName, opts.schedule, archiveRecords(deps, opts.format, opts.sel)); err != nil {
		return err
	}
	if opts.runNow {
		if err := scheduler.RunNow(archiveJobName); err != nil {
			return err
		}
	}
	scheduler.Start()

	var srv *http.Server
	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			deps.Logger.Info("serving metrics", slog.String("addr", opts.metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				deps.Logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
	}
	<-scheduler.Stop().Done()
	return nil
}
