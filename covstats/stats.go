package covstats

import (
	"fmt"
	"math"

	"go4.org/sort"
	"gonum.org/v1/gonum/floats"
)

// DefaultThresholds are the depth cutoffs reported as ">=xN" table columns.
var DefaultThresholds = []int{1, 10, 25, 50, 75, 100}

// fracTolerance bounds |sum(Frac) - 1| for a contig before the contig is
// considered malformed and dropped.
const fracTolerance = 1e-3

// Stats holds the weighted coverage statistics for one contig of one
// aligned assembly. Depth fractions are used as probability weights.
type Stats struct {
	Gnm        string
	Species    string
	Subspecies string
	Assembly   string
	Mean       float64
	SD         float64
	Median     int
	Min        int
	Max        int
	// AtOrAbove[i] is the fraction of bases at depth >= the i-th threshold.
	AtOrAbove []float64
}

// Aggregate computes the weighted statistics for one contig group. The
// weights are summed explicitly rather than assumed to total one, so
// histograms with truncated fractions still aggregate correctly; only a
// total outside fracTolerance fails the contig.
func Aggregate(g Group, thresholds []int) (Stats, error) {
	if len(g.Rows) == 0 {
		return Stats{}, fmt.Errorf("contig %s: no rows", g.Gnm)
	}

	rows := make([]Row, len(g.Rows))
	copy(rows, g.Rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Depth < rows[j].Depth })

	depths := make([]float64, len(rows))
	weights := make([]float64, len(rows))
	for i, r := range rows {
		depths[i] = float64(r.Depth)
		weights[i] = r.Frac
	}
	totW := floats.Sum(weights)
	if math.Abs(totW-1) > fracTolerance {
		return Stats{}, fmt.Errorf("contig %s: depth fractions sum to %.6f, not 1", g.Gnm, totW)
	}

	var mean float64
	for i := range depths {
		mean += depths[i] * weights[i]
	}
	mean /= totW

	var variance float64
	for i := range depths {
		d := depths[i] - mean
		variance += d * d * weights[i]
	}
	variance /= totW

	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)

	s := Stats{
		Gnm:       g.Gnm,
		Mean:      mean,
		SD:        math.Sqrt(variance),
		Median:    weightedMedian(rows, cum, totW),
		Min:       rows[0].Depth,
		Max:       rows[len(rows)-1].Depth,
		AtOrAbove: make([]float64, len(thresholds)),
	}
	for ti, t := range thresholds {
		s.AtOrAbove[ti] = atOrAbove(rows, cum, totW, t)
	}
	return s, nil
}

// weightedMedian is the depth at the first row whose cumulative weight
// reaches half the total. First crossing, never interpolated.
func weightedMedian(rows []Row, cum []float64, totW float64) int {
	half := totW / 2
	for i, c := range cum {
		if c >= half {
			return rows[i].Depth
		}
	}
	return rows[len(rows)-1].Depth
}

// atOrAbove sums the weight of all rows at depth >= t. Rows and cum are
// sorted by ascending depth.
func atOrAbove(rows []Row, cum []float64, totW float64, t int) float64 {
	j := sort.Search(len(rows), func(i int) bool { return rows[i].Depth >= t })
	if j == len(rows) {
		return 0
	}
	if j == 0 {
		return totW
	}
	f := totW - cum[j-1]
	if f < 0 {
		f = 0
	}
	return f
}
