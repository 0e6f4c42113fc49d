package traceability

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "280px"

// ChartRenderer draws the server-side charts shown next to the product: the
// per-step carbon footprint and the sustainability score gauge.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// WithChartHeight overrides the chart height.
func WithChartHeight(height string) ChartOption {
	return func(r *ChartRenderer) {
		r.height = height
	}
}

// NewChartRenderer builds a renderer. Without a cache every call renders.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache:  noopRenderCache{},
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.cache == nil {
		r.cache = noopRenderCache{}
	}
	return r
}

// CarbonPoint is one bar of the carbon chart.
type CarbonPoint struct {
	Step  string
	Value float64
}

// CarbonSeries extracts the numeric footprint of every step. Steps without a
// parsable footprint are skipped.
func CarbonSeries(chain []SupplyChainStep) []CarbonPoint {
	points := make([]CarbonPoint, 0, len(chain))
	for _, step := range chain {
		value, ok := ParseCarbonFootprint(step.CarbonFootprint)
		if !ok {
			continue
		}
		points = append(points, CarbonPoint{Step: step.Step, Value: value})
	}
	return points
}

// ParseCarbonFootprint reads the leading number of a display string such as
// "0.8 kg CO₂".
func ParseCarbonFootprint(display string) (float64, bool) {
	display = strings.TrimSpace(display)
	end := strings.IndexFunc(display, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '-'
	})
	if end == 0 {
		return 0, false
	}
	if end > 0 {
		display = display[:end]
	}
	value, err := strconv.ParseFloat(display, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// CarbonChart renders the per-step carbon footprint as a bar chart. An empty
// chain renders nothing.
func (r *ChartRenderer) CarbonChart(title string, chain []SupplyChainStep) (string, error) {
	points := CarbonSeries(chain)
	if len(points) == 0 {
		return "", nil
	}
	key := fmt.Sprintf("carbon:%s:%s:%s", r.theme, title, contentHash(points))
	return r.cache.GetOrRender(key, func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(title)...)
		labels := make([]string, len(points))
		data := make([]opts.BarData, len(points))
		for i, point := range points {
			labels[i] = point.Step
			data[i] = opts.BarData{Name: point.Step, Value: point.Value}
		}
		bar.SetXAxis(labels)
		bar.AddSeries("kg CO₂", data)
		return renderChart(bar)
	})
}

// ScoreGauge renders the sustainability score as a gauge.
func (r *ChartRenderer) ScoreGauge(title string, score int) (string, error) {
	key := fmt.Sprintf("score:%s:%s:%d", r.theme, title, score)
	return r.cache.GetOrRender(key, func() (string, error) {
		gauge := charts.NewGauge()
		gauge.SetGlobalOptions(r.globalOptions(title)...)
		gauge.AddSeries(title, []opts.GaugeData{{Name: "score", Value: score}})
		return renderChart(gauge)
	})
}

func (r *ChartRenderer) globalOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
