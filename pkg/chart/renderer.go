package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
	"github.com/itohio/goneo/pkg/series"
)

const (
	marginLeft   = float32(60.0)
	marginRight  = float32(20.0)
	marginTop    = float32(28.0)
	marginBottom = float32(30.0)

	numHLines = 6
	numVLines = 10
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	titleColor = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// chartRenderer renders the chart widget.
type chartRenderer struct {
	chart *ChartWidget

	background *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plotArea is the rectangle inside the margins, in widget coordinates.
type plotArea struct {
	x, y, w, h float32
}

// MinSize returns the minimum size of the widget.
func (r *chartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 180)
}

// Layout arranges the widget components.
func (r *chartRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.chart.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current data.
func (r *chartRenderer) Refresh() {
	r.chart.mu.RLock()
	points := r.chart.displayPoints
	stats := r.chart.stats
	b := r.chart.bounds
	r.chart.mu.RUnlock()

	size := r.chart.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	area := plotArea{
		x: marginLeft,
		y: marginTop,
		w: math32.Max(size.Width-marginLeft-marginRight, 1),
		h: math32.Max(size.Height-marginTop-marginBottom, 1),
	}

	r.drawGrid(area, b)
	r.drawLine(area, b, points)
	r.drawHeader(area, stats)
}

// drawGrid draws the grid and axis labels.
func (r *chartRenderer) drawGrid(area plotArea, b bounds) {
	for i := range numHLines + 1 {
		y := area.y + float32(i)*area.h/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(area.x, y)
		line.Position2 = fyne.NewPos(area.x+area.w, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := b.yMax - float64(i)*(b.yMax-b.yMin)/float64(numHLines)
		text := canvas.NewText(formatValue(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(area.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	for i := range numVLines + 1 {
		x := area.x + float32(i)*area.w/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, area.y)
		line.Position2 = fyne.NewPos(x, area.y+area.h)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		seq := b.xMin + i*(b.xMax-b.xMin)/numVLines
		text := canvas.NewText(strconv.Itoa(seq), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, area.y+area.h+5))
		r.objects = append(r.objects, text)
	}
}

// drawLine draws connected segments between consecutive points.
// Non-finite values break the line.
func (r *chartRenderer) drawLine(area plotArea, b bounds, points []series.Point) {
	if len(points) < 2 {
		return
	}

	prev, prevOK := project(area, b, points[0])
	for _, p := range points[1:] {
		pos, ok := project(area, b, p)
		if ok && prevOK {
			line := canvas.NewLine(r.chart.lineColor)
			line.Position1 = prev
			line.Position2 = pos
			line.StrokeWidth = 1.5
			r.objects = append(r.objects, line)
		}
		prev, prevOK = pos, ok
	}
}

// drawHeader draws the title with the last and mean values.
func (r *chartRenderer) drawHeader(area plotArea, stats series.Stats) {
	label := r.chart.title
	if stats.Count > 0 {
		label = fmt.Sprintf("%s  %s %s  (mean %s)", r.chart.title,
			formatValue(stats.Last), r.chart.unit, formatValue(stats.Mean))
	}
	text := canvas.NewText(label, titleColor)
	text.TextSize = 12
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.Move(fyne.NewPos(area.x, 6))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *chartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *chartRenderer) Destroy() {}

// project maps a point into the plot area. ok is false for non-finite values.
// Positions are clamped to the area.
func project(area plotArea, b bounds, p series.Point) (fyne.Position, bool) {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fyne.Position{}, false
	}

	xSpan := float32(b.xMax - b.xMin)
	ySpan := float32(b.yMax - b.yMin)
	if xSpan <= 0 || ySpan <= 0 {
		return fyne.Position{}, false
	}

	fx := float32(p.Seq-b.xMin) / xSpan
	fy := float32(p.Value-b.yMin) / ySpan
	fx = math32.Min(math32.Max(fx, 0), 1)
	fy = math32.Min(math32.Max(fy, 0), 1)

	return fyne.NewPos(area.x+fx*area.w, area.y+area.h-fy*area.h), true
}

func formatValue(v float64) string {
	if math.Abs(v) < 0.005 {
		return "0.00"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
