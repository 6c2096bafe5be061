package render

import (
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/stwalsh4118/cobenefits/internal/analytics"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// vgimg rasterises at 96 dpi, so one pixel is three quarters of a point.
func pixels(px int) vg.Length {
	return vg.Points(float64(px) * 0.75)
}

func save(w io.Writer, p *plot.Plot, size Size) error {
	size = size.orDefault()
	wt, err := p.WriterTo(pixels(size.Width), pixels(size.Height), "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Scatter plots population against benefit value, one colour per nation,
// with population on a log axis. Authorities without a positive population
// are left out.
func Scatter(w io.Writer, title string, points []analytics.ScatterPoint, size Size) error {
	byNation := make(map[string]plotter.XYs)
	for _, pt := range points {
		if !(pt.Population > 0) || math.IsNaN(pt.Value) {
			continue
		}
		byNation[pt.Nation] = append(byNation[pt.Nation], plotter.XY{X: pt.Population, Y: pt.Value})
	}
	if len(byNation) == 0 {
		return ErrNoData
	}

	nations := make([]string, 0, len(byNation))
	for n := range byNation {
		nations = append(nations, n)
	}
	sort.Strings(nations)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Population"
	p.Y.Label.Text = "£ million"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, n := range nations {
		s, err := plotter.NewScatter(byNation[n])
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		label := n
		if label == "" {
			label = "Unknown"
		}
		p.Legend.Add(label, s)
	}

	return save(w, p, size)
}

// Correlation draws the benefit's correlation with every category as bars
// on a fixed [-1, 1] axis.
func Correlation(w io.Writer, title string, corr *analytics.Correlation, size Size) error {
	if corr == nil || len(corr.Correlates) == 0 {
		return ErrNoData
	}

	values := make(plotter.Values, len(corr.Correlates))
	labels := make([]string, len(corr.Correlates))
	for i, c := range corr.Correlates {
		values[i] = c.Coefficient
		labels[i] = analytics.Title(c.Category)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Pearson r"
	p.Y.Min = -1
	p.Y.Max = 1
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return save(w, p, size)
}
