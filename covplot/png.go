package covplot

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// asPng writes a static version of the line plot for report thumbnails.
func asPng(path, contig string, xys *vs) error {
	p := plot.New()
	p.Title.Text = contig
	p.X.Label.Text = "coverage depth"
	p.Y.Label.Text = "% of bases at or above depth"
	p.Y.Min, p.Y.Max = 0, 100

	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Width = vg.Points(0.8)
	l.Color = plotutil.Color(0)
	p.Add(l)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
