package covstats

import (
	"fmt"
	"strings"

	"github.com/brentp/xopen"
)

// SafeLabel rewrites a species, subspecies or contig label for use in file
// names: spaces become underscores and slashes become dashes.
func SafeLabel(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", "_"), "/", "-")
}

// TableColumns is the fixed column order of the statistics table, with one
// ">=xN" column per threshold.
func TableColumns(thresholds []int) []string {
	cols := []string{"gnm", "species", "subspecies", "covMean", "covSD", "covMedian", "covMin", "covMax"}
	for _, t := range thresholds {
		cols = append(cols, fmt.Sprintf(">=x%d", t))
	}
	return append(cols, "assembly")
}

// WriteTable writes one tab-separated row per surviving contig, in input
// file order then contig appearance order. Nil results (skipped files) are
// passed through so callers keep positional ordering without filtering.
func WriteTable(path string, thresholds []int, results []*FileStats) error {
	wtr, err := xopen.Wopen(path)
	if err != nil {
		return err
	}
	wtr.WriteString(strings.Join(TableColumns(thresholds), "\t") + "\n")
	for _, fr := range results {
		if fr == nil {
			continue
		}
		for _, s := range fr.Stats {
			fmt.Fprintf(wtr, "%s\t%s\t%s\t%.4f\t%.4f\t%d\t%d\t%d",
				s.Gnm, s.Species, s.Subspecies, s.Mean, s.SD, s.Median, s.Min, s.Max)
			for _, f := range s.AtOrAbove {
				fmt.Fprintf(wtr, "\t%.6f", f)
			}
			fmt.Fprintf(wtr, "\t%s\n", s.Assembly)
		}
	}
	return wtr.Close()
}
