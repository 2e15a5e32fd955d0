// Package plot renders the charts shown during inspection and analysis.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/edaloom-cli/internal/stats"
	"github.com/KaramelBytes/edaloom-cli/internal/utils"
	"gonum.org/v1/gonum/stat"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Series is a named set of values, one box per series.
type Series struct {
	Name   string
	Values []float64
}

// Plotter draws a chart and returns where it went. An empty path means the
// chart was not persisted.
type Plotter interface {
	Histogram(title string, values []float64) (string, error)
	BoxPlot(title string, groups []Series) (string, error)
	BarChart(title string, labels []string, counts []float64) (string, error)
	Scatter(title, xLabel, yLabel string, x, y []float64) (string, error)
	QQHistogram(title string, values []float64) (string, error)
}

// Discard is the Plotter used when plots are disabled.
type Discard struct{}

func (Discard) Histogram(string, []float64) (string, error)          { return "", nil }
func (Discard) BoxPlot(string, []Series) (string, error)             { return "", nil }
func (Discard) BarChart(string, []string, []float64) (string, error) { return "", nil }
func (Discard) Scatter(string, string, string, []float64, []float64) (string, error) {
	return "", nil
}
func (Discard) QQHistogram(string, []float64) (string, error) { return "", nil }

// PNG writes each chart to Dir as <slug-of-title>.png.
type PNG struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// NewPNG returns a PNG plotter with a 6x4 inch canvas.
func NewPNG(dir string) *PNG {
	return &PNG{Dir: dir, Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

func (p *PNG) path(title string) (string, error) {
	if err := utils.EnsureDir(p.Dir); err != nil {
		return "", fmt.Errorf("plot dir: %w", err)
	}
	return filepath.Join(p.Dir, utils.Slug(title)+".png"), nil
}

func (p *PNG) save(pl *gplot.Plot, title string) (string, error) {
	path, err := p.path(title)
	if err != nil {
		return "", err
	}
	if err := pl.Save(p.Width, p.Height, path); err != nil {
		return "", fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// sturges picks a bin count for n observations.
func sturges(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

func histogram(title string, values []float64) (*gplot.Plot, error) {
	v := finite(values)
	if len(v) == 0 {
		return nil, ErrNoData
	}
	pl := gplot.New()
	pl.Title.Text = title
	pl.Y.Label.Text = "count"
	h, err := plotter.NewHist(plotter.Values(v), sturges(len(v)))
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 90, G: 140, B: 200, A: 255}
	pl.Add(h)
	return pl, nil
}

func (p *PNG) Histogram(title string, values []float64) (string, error) {
	pl, err := histogram(title, values)
	if err != nil {
		return "", err
	}
	return p.save(pl, title)
}

func (p *PNG) BoxPlot(title string, groups []Series) (string, error) {
	pl := gplot.New()
	pl.Title.Text = title
	var names []string
	w := vg.Points(30)
	for i, g := range groups {
		v := finite(g.Values)
		if len(v) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(w, float64(len(names)), plotter.Values(v))
		if err != nil {
			return "", fmt.Errorf("box %d: %w", i, err)
		}
		pl.Add(b)
		names = append(names, g.Name)
	}
	if len(names) == 0 {
		return "", ErrNoData
	}
	pl.NominalX(names...)
	return p.save(pl, title)
}

func (p *PNG) BarChart(title string, labels []string, counts []float64) (string, error) {
	if len(labels) == 0 || len(labels) != len(counts) {
		return "", ErrNoData
	}
	pl := gplot.New()
	pl.Title.Text = title
	pl.Y.Label.Text = "count"
	b, err := plotter.NewBarChart(plotter.Values(counts), vg.Points(20))
	if err != nil {
		return "", fmt.Errorf("bar chart: %w", err)
	}
	b.Color = color.RGBA{R: 90, G: 140, B: 200, A: 255}
	pl.Add(b)
	pl.NominalX(labels...)
	return p.save(pl, title)
}

func (p *PNG) Scatter(title, xLabel, yLabel string, x, y []float64) (string, error) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	if len(pts) == 0 {
		return "", ErrNoData
	}
	pl := gplot.New()
	pl.Title.Text = title
	pl.X.Label.Text = xLabel
	pl.Y.Label.Text = yLabel
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Radius = vg.Points(2)
	pl.Add(s)
	return p.save(pl, title)
}

// QQHistogram draws a normal Q-Q plot with a standardized reference line next
// to a histogram of the same values.
func (p *PNG) QQHistogram(title string, values []float64) (string, error) {
	theo, sample := stats.QQPoints(finite(values))
	if len(sample) < 2 {
		return "", ErrNoData
	}
	qq := gplot.New()
	qq.Title.Text = "Q-Q Plot of " + title
	qq.X.Label.Text = "theoretical quantiles"
	qq.Y.Label.Text = "sample quantiles"
	pts := make(plotter.XYs, len(sample))
	for i := range sample {
		pts[i] = plotter.XY{X: theo[i], Y: sample[i]}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("qq: %w", err)
	}
	s.GlyphStyle.Radius = vg.Points(2)
	mean, sd := stat.MeanStdDev(sample, nil)
	line := plotter.NewFunction(func(x float64) float64 { return mean + sd*x })
	line.Color = color.RGBA{R: 200, A: 255}
	qq.Add(s, line)

	hist, err := histogram("Histogram of "+title, sample)
	if err != nil {
		return "", err
	}

	path, err := p.path("qq-histogram-" + title)
	if err != nil {
		return "", err
	}
	img := vgimg.New(2*p.Width, p.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter * 4}
	canvases := gplot.Align([][]*gplot.Plot{{qq, hist}}, tiles, dc)
	qq.Draw(canvases[0][0])
	hist.Draw(canvases[0][1])

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// Frequencies counts values for a bar chart, most frequent first and ties by
// label.
func Frequencies(values []string) ([]string, []float64) {
	counts := map[string]float64{}
	for _, v := range values {
		counts[v]++
	}
	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = counts[l]
	}
	return labels, out
}
