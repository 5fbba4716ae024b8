// Package report renders a plain-text station report: the feed header, the
// KPI counts, the capped station table and a chart of active stations.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/types"
)

const terminalWidthBackup = 100

// Report bundles the views rendered by Renderer.
type Report struct {
	Feed   types.FeedInfo
	Counts types.CountsResponse
	Page   types.StationPage
	Series types.SeriesResponse
}

// Renderer writes reports as text.
type Renderer struct {
	width       int
	chartHeight int
	useColors   bool

	active   *color.Color
	inactive *color.Color
	heading  *color.Color
	muted    *color.Color
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithWidth fixes the output width. Zero means the terminal width.
func WithWidth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.width = n
		}
	}
}

// WithColors forces ANSI colors on or off.
func WithColors(on bool) Option {
	return func(r *Renderer) {
		r.useColors = on
	}
}

// WithChartHeight sets the number of chart rows.
func WithChartHeight(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.chartHeight = n
		}
	}
}

// NewRenderer creates a renderer for out. Width and color default to what
// out supports when it is a terminal.
func NewRenderer(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		width:       terminalWidth(out),
		chartHeight: defaultChartHeight,
		useColors:   shouldUseColor(out),
		active:      color.New(color.FgGreen, color.Bold),
		inactive:    color.New(color.FgRed),
		heading:     color.New(color.FgCyan, color.Bold),
		muted:       color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, c := range []*color.Color{r.active, r.inactive, r.heading, r.muted} {
		if r.useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes rep to w.
func (r *Renderer) Render(w io.Writer, rep Report) error {
	var b strings.Builder
	r.writeHeader(&b, rep.Feed)
	r.writeCounts(&b, rep.Counts)
	r.writeTable(&b, rep.Page)
	r.writeChart(&b, rep.Series)
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) writeHeader(b *strings.Builder, feed types.FeedInfo) {
	b.WriteString(r.heading.Sprint("Station feed"))
	b.WriteByte('\n')
	generated := feed.GeneratedAt
	if generated == "" {
		generated = "unknown"
	}
	fmt.Fprintf(b, "  source:       %s\n", feed.Source)
	fmt.Fprintf(b, "  generated at: %s\n", generated)
	fmt.Fprintf(b, "  default year: %s\n", feed.DefaultYear)
	fmt.Fprintf(b, "  stations:     %d\n\n", feed.StationCount)
}

func (r *Renderer) writeCounts(b *strings.Builder, c types.CountsResponse) {
	title := fmt.Sprintf("Status in %d", c.Year)
	if q := strings.TrimSpace(c.Query); q != "" {
		title += fmt.Sprintf(" for %q (%s)", q, c.Scope)
	}
	b.WriteString(r.heading.Sprint(title))
	b.WriteByte('\n')
	fmt.Fprintf(b, "  %s %d   %s %d   total %d\n\n",
		r.active.Sprint("active"), c.Active,
		r.inactive.Sprint("inactive"), c.Inactive,
		c.Total)
}

func (r *Renderer) writeTable(b *strings.Builder, page types.StationPage) {
	if len(page.Rows) == 0 {
		b.WriteString(r.muted.Sprint("No matching stations."))
		b.WriteString("\n\n")
		return
	}

	headers := []string{"ID", "NAME", "COUNTRY", "BEGIN", "END", "STATUS"}
	rows := make([][]string, 0, len(page.Rows))
	statuses := make([]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		status := ""
		if row.Active != nil {
			status = statusLabel(*row.Active)
		}
		statuses = append(statuses, status)
		rows = append(rows, []string{
			row.ID, row.Name, row.Country,
			row.BeginYear.String(), row.EndYear.String(), status,
		})
	}

	lines := formatTable(headers, rows, map[int]bool{3: true, 4: true}, r.width, 1)
	b.WriteString(r.heading.Sprint(lines[0]))
	b.WriteByte('\n')
	for i, line := range lines[1:] {
		if s := statuses[i]; s != "" {
			line = strings.TrimSuffix(line, s) + r.badge(s)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if page.Matched > page.Shown {
		b.WriteString(r.muted.Sprintf("Showing %d of %d matching stations.", page.Shown, page.Matched))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func (r *Renderer) writeChart(b *strings.Builder, s types.SeriesResponse) {
	if len(s.Points) == 0 {
		return
	}
	b.WriteString(r.heading.Sprintf("Active stations %d-%d", s.Start, s.End))
	b.WriteByte('\n')
	for _, line := range barChart(activeValues(s.Points), r.width, r.chartHeight,
		strconv.Itoa(s.Points[0].Year), strconv.Itoa(s.Points[len(s.Points)-1].Year)) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func (r *Renderer) badge(status string) string {
	if status == statusLabel(true) {
		return r.active.Sprint(status)
	}
	return r.inactive.Sprint(status)
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func activeValues(points []aggregate.Counts) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Active
	}
	return out
}

func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(out io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
