// Package covplot renders the per-contig coverage plots the pikavirus
// report links to: for each aligned contig, the percentage of bases at or
// above each depth, written as chart.js HTML and optionally png. It consumes
// the pure data types of covstats and never feeds back into the statistics.
package covplot

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"

	"github.com/GuilleGorines/nf-core-pikavirus/covstats"
	"github.com/GuilleGorines/nf-core-pikavirus/refsheet"
	"github.com/JaderDias/movingmedian"
	arg "github.com/alexflint/go-arg"
	chartjs "github.com/brentp/go-chartjs"
	"github.com/brentp/go-chartjs/types"
	"go4.org/sort"
	"gonum.org/v1/gonum/floats"
)

type cliargs struct {
	OutDir   string   `arg:"-d,help:directory to write plots into"`
	Png      bool     `arg:"help:also write a png version of each plot"`
	Smooth   int      `arg:"-s,help:optional moving-median window applied to the plotted series"`
	Sample   string   `arg:"positional,required,help:sample name used in plot file names"`
	Sheet    string   `arg:"positional,required,help:reference sheet mapping assembly files to species"`
	Coverage []string `arg:"positional,required,help:depth histogram files to plot"`
}

// vs pairs x and y series for chartjs and gonum plotting.
type vs struct {
	xs []float64
	ys []float64
}

func (v *vs) Xs() []float64 { return v.xs }
func (v *vs) Ys() []float64 { return v.ys }
func (v *vs) Rs() []float64 { return nil }
func (v *vs) Len() int      { return len(v.xs) }

// XY makes vs meet gonum/plot's plotter.XYer.
func (v *vs) XY(i int) (x, y float64) { return v.xs[i], v.ys[i] }

// Main is called from the dispatcher.
func Main() {
	cli := cliargs{OutDir: "."}
	arg.MustParse(&cli)

	idx, err := refsheet.Load(cli.Sheet)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cli.OutDir, 0777); err != nil {
		log.Fatal(err)
	}
	run(cli, idx)
}

func run(args cliargs, idx refsheet.Index) {
	for _, path := range args.Coverage {
		id := covstats.AssemblyID(path)
		rec, ok := idx[id]
		if !ok {
			log.Printf("covplot: skipping %s: assembly %q not in reference sheet", path, id)
			continue
		}
		rows, err := covstats.ReadHistogram(path)
		if err != nil {
			log.Printf("covplot: skipping %s: %v", path, err)
			continue
		}
		if covstats.IsZeroCoverage(rows) {
			log.Printf("covplot: %s: no bases covered, nothing to plot", path)
			continue
		}
		for i, g := range covstats.Collapse(covstats.GroupByContig(rows)) {
			xys := series(g)
			if args.Smooth > 1 {
				smooth(xys, args.Smooth)
			}
			base := fmt.Sprintf("%s_%s_%s_%s_%s_lineplot", args.Sample,
				covstats.SafeLabel(rec.Species), covstats.SafeLabel(rec.Subspecies),
				id, covstats.SafeLabel(g.Gnm))
			base = filepath.Join(args.OutDir, base)
			if err := plotContig(base, g.Gnm, xys, i, args.Png); err != nil {
				log.Printf("covplot: %s: %v", path, err)
			}
		}
	}
}

// series builds depth vs percentage-of-bases-at-or-above-depth for one
// contig. The percentage at a depth is the total weight minus the weight
// accumulated below it.
func series(g covstats.Group) *vs {
	rows := make([]covstats.Row, len(g.Rows))
	copy(rows, g.Rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Depth < rows[j].Depth })

	weights := make([]float64, len(rows))
	for i, r := range rows {
		weights[i] = r.Frac
	}
	totW := floats.Sum(weights)
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)

	v := &vs{xs: make([]float64, len(rows)), ys: make([]float64, len(rows))}
	for i, r := range rows {
		v.xs[i] = float64(r.Depth)
		above := totW - cum[i] + weights[i]
		if above < 0 {
			above = 0
		}
		v.ys[i] = 100 * above
	}
	return v
}

// smooth replaces the y series with a trailing moving median.
func smooth(v *vs, window int) {
	mm := movingmedian.NewMovingMedian(window)
	for i := range v.ys {
		mm.Push(v.ys[i])
		v.ys[i] = mm.Median()
	}
}

func plotContig(base, contig string, xys *vs, seed int, png bool) error {
	chart := chartjs.Chart{Label: contig}
	xa, err := chart.AddXAxis(chartjs.Axis{Type: chartjs.Linear, Position: chartjs.Bottom,
		ScaleLabel: &chartjs.ScaleLabel{FontSize: 16, LabelString: "coverage depth", Display: chartjs.True}})
	if err != nil {
		return err
	}
	ya, err := chart.AddYAxis(chartjs.Axis{Type: chartjs.Linear, Position: chartjs.Left,
		Tick:       &chartjs.Tick{Min: 0, Max: 100},
		ScaleLabel: &chartjs.ScaleLabel{FontSize: 16, LabelString: "% of bases at or above depth", Display: chartjs.True}})
	if err != nil {
		return err
	}

	c := lineColor(seed)
	dataset := chartjs.Dataset{Data: xys, Label: contig, Fill: chartjs.False, PointRadius: 0,
		BorderWidth: 2, BorderColor: c, BackgroundColor: c, SteppedLine: chartjs.True, PointHitRadius: 6}
	dataset.XAxisID = xa
	dataset.YAxisID = ya
	chart.AddDataset(dataset)
	chart.Options.Responsive = chartjs.False
	chart.Options.Tooltip = &chartjs.Tooltip{Mode: "nearest"}

	wtr, err := os.Create(base + ".html")
	if err != nil {
		return err
	}
	link := template.HTML(`<a href="index.html">back to report</a>`)
	if err := chart.SaveHTML(wtr, map[string]interface{}{"width": 850, "height": 550, "customHTML": link}); err != nil {
		wtr.Close()
		return err
	}
	if err := wtr.Close(); err != nil {
		return err
	}
	if png {
		return asPng(base+".png", contig, xys)
	}
	return nil
}

func lineColor(i int) *types.RGBA {
	// a small fixed palette keeps plots for the same contig stable between runs.
	palette := []types.RGBA{
		{R: 110, G: 120, B: 250, A: 240},
		{R: 250, G: 110, B: 59, A: 240},
		{R: 110, G: 250, B: 59, A: 240},
		{R: 180, G: 60, B: 190, A: 240},
	}
	c := palette[i%len(palette)]
	return &c
}
