package gauge

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorThresholds(t *testing.T) {
	tests := []struct {
		score int
		level Level
		color string
	}{
		{0, LevelDanger, DangerColor},
		{49, LevelDanger, DangerColor},
		{50, LevelWarning, WarningColor},
		{79, LevelWarning, WarningColor},
		{80, LevelSuccess, SuccessColor},
		{100, LevelSuccess, SuccessColor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelFor(tt.score), "level for %d", tt.score)
		assert.Equal(t, tt.color, Color(tt.score), "color for %d", tt.score)
	}
}

func TestUpdateClampsScore(t *testing.T) {
	g := New(SlotUX)

	g.Update(150, "")
	assert.Equal(t, 100, g.Score())

	g.Update(-3, "")
	assert.Equal(t, 0, g.Score())
	assert.Equal(t, DangerColor, g.Color())
}

func TestUpdateIsIdempotent(t *testing.T) {
	once := New(SlotSEO)
	once.Update(72, "")

	twice := New(SlotSEO)
	twice.Update(72, "")
	twice.Update(72, "")

	a, err := once.Render()
	require.NoError(t, err)
	b, err := twice.Render()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderAnimatesFirstPaintOnly(t *testing.T) {
	g := New(SlotPerformance)
	assert.True(t, g.View().Animate)

	first, err := g.Render()
	require.NoError(t, err)
	assert.Contains(t, string(first), "gauge-animate")
	assert.True(t, g.Painted())

	g.Update(90, "")
	second, err := g.Render()
	require.NoError(t, err)
	assert.NotContains(t, string(second), "gauge-animate")
}

func TestRenderMarkup(t *testing.T) {
	g := New(SlotUX)
	g.Update(50, "")

	html, err := g.Render()
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find("svg#uxScoreChart").Length())
	assert.Equal(t, "50%", doc.Find("#uxScoreText").Text())

	style, _ := doc.Find("#uxScoreText").Attr("style")
	assert.Contains(t, style, WarningColor)

	value := doc.Find("circle.gauge-value")
	stroke, _ := value.Attr("stroke")
	assert.Equal(t, WarningColor, stroke)

	dash, _ := value.Attr("stroke-dasharray")
	parts := strings.Fields(dash)
	require.Len(t, parts, 2)
	assert.Equal(t, "164.93", parts[0], "half of the ring is filled")
	assert.Equal(t, "329.87", parts[1])
}

func TestSetOwnsThreeGauges(t *testing.T) {
	s := NewSet()
	for _, slot := range Slots() {
		require.NotNil(t, s.Get(slot))
	}
	assert.Nil(t, s.Get(Slot("unknown")))

	ux := s.Get(SlotUX)
	s.Update(SlotUX, 88, "")
	s.Update(SlotSEO, 10, "SEO analysis failed")
	s.Update(Slot("unknown"), 10, "")

	assert.Same(t, ux, s.Get(SlotUX), "gauges are updated in place")
	assert.Equal(t, 88, ux.Score())
	assert.Equal(t, "SEO analysis failed", s.Get(SlotSEO).Error())

	rendered, err := s.RenderAll()
	require.NoError(t, err)
	require.Len(t, rendered, 3)
	assert.Equal(t, SlotUX, rendered[0].Slot)
	assert.True(t, rendered[0].Animate)
	assert.Equal(t, SlotPerformance, rendered[2].Slot)

	again, err := s.RenderAll()
	require.NoError(t, err)
	for _, r := range again {
		assert.False(t, r.Animate)
	}
}
