package traceability

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCarbonFootprint(t *testing.T) {
	cases := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"0.8 kg CO₂", 0.8, true},
		{"  2 kg", 2, true},
		{"12", 12, true},
		{"kg CO₂", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseCarbonFootprint(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.InDelta(t, tc.want, got, 0.0001, "input %q", tc.input)
	}
}

func TestCarbonSeriesSkipsUnparsable(t *testing.T) {
	chain := DefaultCatalog().Chain
	chain[1].CarbonFootprint = "unknown"
	points := CarbonSeries(chain)
	require.Len(t, points, 3)
	assert.Equal(t, "Farm", points[0].Step)
	assert.Equal(t, "Distribution", points[1].Step)
}

func TestCarbonChartRendersAndCaches(t *testing.T) {
	cache := NewFragmentCache(time.Minute)
	renderer := NewChartRenderer(WithChartCache(cache), WithChartHeight("200px"))

	html, err := renderer.CarbonChart("Carbon", DefaultCatalog().Chain)
	require.NoError(t, err)
	assert.Contains(t, html, "Carbon")
	assert.True(t, strings.Contains(html, "echarts"), "expected echarts bootstrap")
	assert.Equal(t, 1, cache.Len())

	again, err := renderer.CarbonChart("Carbon", DefaultCatalog().Chain)
	require.NoError(t, err)
	assert.Equal(t, html, again)
	assert.Equal(t, 1, cache.Len())
}

func TestCarbonChartEmptyChain(t *testing.T) {
	html, err := NewChartRenderer().CarbonChart("Carbon", nil)
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestScoreGauge(t *testing.T) {
	cache := NewFragmentCache(time.Minute)
	renderer := NewChartRenderer(WithChartCache(cache), WithChartAssetsHost("https://cdn.example.com/echarts/"))
	html, err := renderer.ScoreGauge("Score", 87)
	require.NoError(t, err)
	assert.Contains(t, html, "cdn.example.com")

	_, err = renderer.ScoreGauge("Score", 40)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len(), "different scores must not share a cache entry")
}
