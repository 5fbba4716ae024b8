package report

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stationlens/internal/domain/aggregate"
	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/internal/domain/types"
)

func sampleReport() Report {
	stations := []station.Station{
		{ID: "AAA", Name: "Alpha", Country: "Norway", BeginYear: station.YearOf(1990), EndYear: station.YearOf(2005)},
		{ID: "東京", Name: "Tōkyō Ōtemachi", Country: "Japan", BeginYear: station.YearOf(1875)},
	}
	year := station.YearOf(2010)
	rows := []types.StationRow{types.NewStationRow(stations[0], year), types.NewStationRow(stations[1], year)}
	return Report{
		Feed: types.FeedInfo{
			Loaded:       true,
			Source:       "data/stations.json",
			GeneratedAt:  "2024-05-01",
			DefaultYear:  year,
			StationCount: 3,
		},
		Counts: types.CountsResponse{Scope: "all", Counts: aggregate.CountAt(stations, 2010)},
		Page: types.StationPage{
			Scope: "all", Year: year, Matched: 3, Shown: 2, Limit: 2, Rows: rows,
		},
		Series: types.SeriesResponse{
			Start: 1985, End: 2010,
			Points: aggregate.BuildSeries(stations, 1985, 2010),
		},
	}
}

func TestRenderer(t *testing.T) {
	Convey("Given a renderer without colors", t, func() {
		var out bytes.Buffer
		r := NewRenderer(&out, WithWidth(60), WithColors(false), WithChartHeight(4))

		Convey("When a report is rendered", func() {
			So(r.Render(&out, sampleReport()), ShouldBeNil)
			text := out.String()

			Convey("Then the header and counts are printed", func() {
				So(text, ShouldContainSubstring, "source:       data/stations.json")
				So(text, ShouldContainSubstring, "default year: 2010")
				So(text, ShouldContainSubstring, "Status in 2010")
				So(text, ShouldContainSubstring, "active 1   inactive 1   total 2")
			})

			Convey("Then the table carries status badges and open bounds", func() {
				So(text, ShouldContainSubstring, "inactive")
				lines := strings.Split(text, "\n")
				var tokyo string
				for _, l := range lines {
					if strings.HasPrefix(l, "東京") {
						tokyo = l
					}
				}
				So(tokyo, ShouldNotBeEmpty)
				So(tokyo, ShouldContainSubstring, " - ")
				So(tokyo, ShouldEndWith, "active")
				So(text, ShouldContainSubstring, "Showing 2 of 3 matching stations.")
			})

			Convey("Then no ANSI escapes are written", func() {
				So(text, ShouldNotContainSubstring, "\x1b[")
			})

			Convey("Then the chart spans the series years", func() {
				So(text, ShouldContainSubstring, "Active stations 1985-2010")
				So(text, ShouldContainSubstring, "1985")
				So(text, ShouldContainSubstring, "█")
			})
		})
	})

	Convey("Given a renderer with colors forced on", t, func() {
		var out bytes.Buffer
		r := NewRenderer(&out, WithWidth(80), WithColors(true))
		So(r.Render(&out, sampleReport()), ShouldBeNil)

		Convey("Then badges are colored", func() {
			So(out.String(), ShouldContainSubstring, "\x1b[")
		})
	})

	Convey("Given an empty page and series", t, func() {
		var out bytes.Buffer
		rep := sampleReport()
		rep.Page = types.StationPage{}
		rep.Series = types.SeriesResponse{Points: []aggregate.Counts{}}
		So(NewRenderer(&out, WithColors(false)).Render(&out, rep), ShouldBeNil)

		Convey("Then a placeholder replaces the table and no chart is drawn", func() {
			So(out.String(), ShouldContainSubstring, "No matching stations.")
			So(out.String(), ShouldNotContainSubstring, "Active stations")
		})
	})
}

func TestFormatTable(t *testing.T) {
	Convey("Given wide and narrow cells", t, func() {
		headers := []string{"ID", "NAME", "N"}
		rows := [][]string{{"a", "日本語の名前", "7"}, {"bb", "x", "12"}}

		Convey("Then columns are padded by display width", func() {
			lines := formatTable(headers, rows, map[int]bool{2: true}, 0, -1)
			So(lines, ShouldResemble, []string{
				"ID NAME          N",
				"a  日本語の名前  7",
				"bb x            12",
			})
		})

		Convey("Then the truncation column shrinks to fit", func() {
			lines := formatTable(headers, rows, nil, 12, 1)
			So(lines[1], ShouldContainSubstring, ellipsis)
		})
	})
}

func TestBarChart(t *testing.T) {
	Convey("Given a rising series", t, func() {
		lines := barChart([]int{0, 2, 4, 8}, 30, 2, "2000", "2003")

		Convey("Then the tallest column fills every row", func() {
			So(len(lines), ShouldEqual, 4)
			So(lines[0], ShouldStartWith, "8 │ ")
			So(lines[0], ShouldEndWith, "█")
			So(lines[1], ShouldStartWith, "0 │ ")
			So(lines[3], ShouldContainSubstring, "2000")
			So(lines[3], ShouldEndWith, "2003")
		})
	})

	Convey("Given no values", t, func() {
		So(barChart(nil, 80, 4, "", ""), ShouldBeNil)
	})

	Convey("Resample keeps peaks when shrinking", t, func() {
		So(resample([]int{1, 9, 2, 3}, 2), ShouldResemble, []int{9, 3})
		So(resample([]int{1, 2}, 4), ShouldResemble, []int{1, 1, 2, 2})
	})

	Convey("Cells scale to eighths", t, func() {
		So(cell(8, 8, 1, 0), ShouldEqual, '█')
		So(cell(4, 8, 1, 0), ShouldEqual, '▄')
		So(cell(0, 8, 1, 0), ShouldEqual, ' ')
	})
}
