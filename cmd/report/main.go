// Package main provides the stationlens report CLI: it fetches the feed once
// and prints the KPI counts, the station table and the active-station chart.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/okian/stationlens/internal/app"
	"github.com/okian/stationlens/internal/adapters/feed"
	"github.com/okian/stationlens/internal/config"
	"github.com/okian/stationlens/internal/domain/search"
	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/internal/domain/types"
	"github.com/okian/stationlens/internal/report"
	"github.com/okian/stationlens/pkg/logger"
)

type reportOptions struct {
	feedURL string
	query   string
	scope   string
	year    int
	start   int
	end     int
	limit   int
	width   int
	noColor bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:          "report",
		Short:        "Print a station status report from the feed",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts, yearFlags{
				year:  flags.Changed("year"),
				start: flags.Changed("start"),
				end:   flags.Changed("end"),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.feedURL, "feed-url", "", "feed URL or path (default: feed_url from config)")
	flags.StringVarP(&opts.query, "query", "q", "", "case-insensitive search text")
	flags.StringVar(&opts.scope, "scope", "all", "search scope: all, station_id, name, country")
	flags.IntVar(&opts.year, "year", 0, "classification year (default: feed default year)")
	flags.IntVar(&opts.start, "start", 0, "first series year (default: series_start_year)")
	flags.IntVar(&opts.end, "end", 0, "last series year (default: feed default year)")
	flags.IntVar(&opts.limit, "limit", 0, "maximum table rows (default: display_limit)")
	flags.IntVar(&opts.width, "width", 0, "output width (default: terminal width)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

// yearFlags records which optional year flags were given.
type yearFlags struct {
	year, start, end bool
}

func runReport(ctx context.Context, out io.Writer, opts reportOptions, set yearFlags) error {
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	_ = logger.SetLevelString("warn")

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.feedURL != "" {
		cfg.FeedURL = opts.feedURL
	}

	scope, err := search.ParseScope(opts.scope)
	if err != nil {
		return err
	}

	q := types.StationQuery{Text: opts.query, Scope: scope, Limit: opts.limit}
	sq := types.SeriesQuery{Text: opts.query, Scope: scope}
	if q.Year, err = yearFlag("year", opts.year, set.year); err != nil {
		return err
	}
	if sq.Start, err = yearFlag("start", opts.start, set.start); err != nil {
		return err
	}
	if sq.End, err = yearFlag("end", opts.end, set.end); err != nil {
		return err
	}

	svc := service.New(
		service.WithFetcher(feed.NewClient(cfg.FeedURL, feed.WithTimeout(cfg.FeedTimeout()))),
		service.WithRefreshInterval(0),
		service.WithSeriesStart(cfg.SeriesStartYear),
		service.WithMaxSeriesYears(cfg.MaxSeriesYears),
		service.WithDisplayLimit(cfg.DisplayLimit),
		service.WithMemoSize(0),
		service.WithRequireDefaultYear(cfg.RequireDefaultYear),
	)
	info, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	counts, err := svc.Counts(ctx, q)
	if err != nil {
		return err
	}
	if !q.Year.IsSet() {
		q.Year = station.YearOf(counts.Year)
	}
	page, err := svc.Stations(ctx, q)
	if err != nil {
		return err
	}
	series, err := svc.Series(ctx, sq)
	if err != nil {
		return err
	}

	renderOpts := []report.Option{report.WithWidth(opts.width)}
	if opts.noColor {
		renderOpts = append(renderOpts, report.WithColors(false))
	}
	return report.NewRenderer(out, renderOpts...).Render(out, report.Report{
		Feed:   info,
		Counts: counts,
		Page:   page,
		Series: series,
	})
}

// yearFlag returns v as a present year when the flag was given.
func yearFlag(name string, v int, given bool) (station.Year, error) {
	if !given {
		return station.NoYear, nil
	}
	if !station.InRange(v) {
		return station.NoYear, fmt.Errorf("--%s must be within [%d, %d], got %d", name, station.MinYear, station.MaxYear, v)
	}
	return station.YearOf(v), nil
}
