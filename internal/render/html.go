package render

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

var kindTitles = []struct {
	kind  domain.Kind
	title string
}{
	{domain.KindSeaLevel, "Sea level"},
	{domain.KindCatch, "Fisheries catch"},
	{domain.KindPrice, "Prices"},
	{domain.KindIndex, "Indices"},
}

// Dashboard is the content of one HTML dashboard page.
type Dashboard struct {
	Title    string
	Subtitle string
	Series   []domain.Series
	Trends   map[string]domain.Trend
	Regions  []domain.Region

	// Derivations get a chart of the source as bars against the derived
	// series on a second axis, when both are in Series.
	Derivations []domain.Derivation
}

// WriteHTML renders d as a self-contained echarts page: one line chart per
// series kind present, a dual-axis chart per derivation, then the regional
// sea level rise as a bar chart and as a map of province coordinates.
func WriteHTML(w io.Writer, d Dashboard) error {
	page := components.NewPage()
	page.PageTitle = d.Title

	for _, kt := range kindTitles {
		group := ofKind(d.Series, kt.kind)
		if len(group) == 0 {
			continue
		}
		page.AddCharts(lineChart(kt.title, d.Subtitle, group, d.Trends))
	}
	for _, dv := range d.Derivations {
		source, ok1 := byLabel(d.Series, dv.Source)
		derived, ok2 := byLabel(d.Series, dv.Derived)
		if ok1 && ok2 {
			page.AddCharts(dualAxisChart(d.Subtitle, source, derived))
		}
	}
	if len(d.Regions) > 0 {
		page.AddCharts(regionChart(d.Regions), regionMap(d.Regions))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func ofKind(series []domain.Series, kind domain.Kind) []domain.Series {
	var out []domain.Series
	for _, s := range series {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func byLabel(series []domain.Series, label string) (domain.Series, bool) {
	for _, s := range series {
		if s.Label == label {
			return s, true
		}
	}
	return domain.Series{}, false
}

func lineChart(title, subtitle string, group []domain.Series, trends map[string]domain.Trend) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "1000px",
			Height: "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: group[0].Unit}),
	)

	years := unionYears(group)
	xAxis := make([]string, len(years))
	for i, y := range years {
		xAxis[i] = strconv.Itoa(y)
	}
	line.SetXAxis(xAxis)

	for _, s := range group {
		line.AddSeries(s.Label, lineData(s, years))
		if tr, ok := trends[s.Label]; ok {
			fitted := tr.Fitted(s)
			line.AddSeries(fitted.Label, lineData(fitted, years))
		}
	}
	return line
}

// lineData aligns s to years; missing years become empty points.
func lineData(s domain.Series, years []int) []opts.LineData {
	data := make([]opts.LineData, len(years))
	for i, y := range years {
		if v, ok := s.At(y); ok {
			data[i] = opts.LineData{Value: v}
		} else {
			data[i] = opts.LineData{Value: "-"}
		}
	}
	return data
}

func unionYears(group []domain.Series) []int {
	var years []int
	for _, s := range group {
		years = append(years, s.Years()...)
	}
	slices.Sort(years)
	return slices.Compact(years)
}

func regionChart(regions []domain.Region) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "1000px",
			Height: "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Regional sea level rise",
			Subtitle: "Projected rise by province (cm)",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Province"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "cm"}),
	)

	names := make([]string, len(regions))
	data := make([]opts.BarData, len(regions))
	for i, r := range regions {
		names[i] = r.Province
		data[i] = opts.BarData{Value: r.SeaLevelRiseCM, Name: r.Impact}
	}
	bar.SetXAxis(names).AddSeries("Sea level rise", data)
	return bar
}

// dualAxisChart plots source as bars on the left axis and derived as a line
// on the right axis.
func dualAxisChart(subtitle string, source, derived domain.Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "1000px",
			Height: "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s and %s", source.Label, derived.Label),
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: source.Unit}),
	)
	bar.ExtendYAxis(opts.YAxis{Name: derived.Unit, Position: "right"})

	years := unionYears([]domain.Series{source, derived})
	xAxis := make([]string, len(years))
	bars := make([]opts.BarData, len(years))
	for i, y := range years {
		xAxis[i] = strconv.Itoa(y)
		if v, ok := source.At(y); ok {
			bars[i] = opts.BarData{Value: v}
		} else {
			bars[i] = opts.BarData{Value: "-"}
		}
	}
	bar.SetXAxis(xAxis).AddSeries(source.Label, bars)

	line := charts.NewLine()
	line.SetXAxis(xAxis).AddSeries(derived.Label, lineData(derived, years),
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	bar.Overlap(line)
	return bar
}

// regionMap places each province at its coordinates, sized by sea level rise.
func regionMap(regions []domain.Region) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "1000px",
			Height: "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Regional impact map",
			Subtitle: "Province locations, marker size by sea level rise (cm)",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{b}"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", Type: "value", Scale: opts.Bool(true)}),
	)
	scatter.AddSeries("Provinces", regionPoints(regions))
	return scatter
}

func regionPoints(regions []domain.Region) []opts.ScatterData {
	data := make([]opts.ScatterData, len(regions))
	for i, r := range regions {
		data[i] = opts.ScatterData{
			Name:       fmt.Sprintf("%s: %.1f cm, %s", r.Province, r.SeaLevelRiseCM, r.Impact),
			Value:      []float64{r.Lon, r.Lat, r.SeaLevelRiseCM},
			SymbolSize: int(math.Round(r.SeaLevelRiseCM * 2)),
		}
	}
	return data
}
