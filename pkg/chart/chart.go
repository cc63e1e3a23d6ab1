package chart

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goneo/pkg/series"
)

const (
	// DefaultMaxPoints limits points drawn for efficient rendering.
	DefaultMaxPoints = 1000
	// MinWindow is the smallest X range in sequence numbers; a fresh
	// session fills the chart from the left instead of stretching.
	MinWindow = 200
)

// Colors used by the two trainer channels.
var (
	PressureColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	FrequencyColor = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
)

// bounds is the visible data range.
type bounds struct {
	xMin, xMax int
	yMin, yMax float64
}

// ChartWidget is a custom Fyne widget that plots one channel's series live.
type ChartWidget struct {
	widget.BaseWidget

	title     string
	unit      string
	lineColor color.Color

	// Data (protected by mu)
	mu            sync.RWMutex
	displayPoints []series.Point // Reused for downsampling
	stats         series.Stats
	bounds        bounds

	maxDisplayPoints int
}

// New creates a new ChartWidget instance.
func New(title, unit string, lineColor color.Color, maxPoints int) *ChartWidget {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	c := &ChartWidget{
		title:            title,
		unit:             unit,
		lineColor:        lineColor,
		displayPoints:    make([]series.Point, 0, maxPoints),
		maxDisplayPoints: maxPoints,
		bounds:           computeBounds(nil),
	}
	c.ExtendBaseWidget(c)
	return c
}

// UpdateData replaces the plotted points. Call it on the Fyne main thread.
func (c *ChartWidget) UpdateData(points []series.Point) {
	c.mu.Lock()
	c.displayPoints = series.Downsample(c.displayPoints, points, c.maxDisplayPoints)
	c.stats = series.Summarize(points)
	c.bounds = computeBounds(c.displayPoints)
	c.mu.Unlock()

	// Refresh must be outside lock, the renderer takes RLock
	c.Refresh()
}

// SetMaxPoints changes the decimation limit for subsequent updates.
// Non-positive values select DefaultMaxPoints.
func (c *ChartWidget) SetMaxPoints(maxPoints int) {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	c.mu.Lock()
	c.maxDisplayPoints = maxPoints
	c.mu.Unlock()
}

// Clear removes all points.
func (c *ChartWidget) Clear() {
	c.UpdateData(nil)
}

// Stats returns the statistics of the last update.
func (c *ChartWidget) Stats() series.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// CreateRenderer creates the widget renderer.
func (c *ChartWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &chartRenderer{
		chart:      c,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

// computeBounds finds the data range with a 10% Y margin and a minimum X window.
// Non-finite values do not contribute to the Y range.
func computeBounds(points []series.Point) bounds {
	if len(points) == 0 {
		return bounds{xMin: 0, xMax: MinWindow, yMin: 0, yMax: 1}
	}

	b := bounds{
		xMin: points[0].Seq,
		xMax: points[len(points)-1].Seq,
	}
	seen := false
	for _, p := range points {
		if !series.IsFinite(p.Value) {
			continue
		}
		if !seen || p.Value < b.yMin {
			b.yMin = p.Value
		}
		if !seen || p.Value > b.yMax {
			b.yMax = p.Value
		}
		seen = true
	}

	span := b.yMax - b.yMin
	if span == 0 {
		span = 1.0
	}
	margin := span * 0.1
	b.yMin -= margin
	b.yMax += margin

	if b.xMax-b.xMin < MinWindow {
		b.xMax = b.xMin + MinWindow
	}

	return b
}
