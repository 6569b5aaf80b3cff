// Package covstats turns per-position depth histograms into the per-sample
// coverage table consumed by the pikavirus report: weighted mean, standard
// deviation and median depth per contig, plus the fraction of bases at or
// above a set of depth cutoffs, annotated with species and subspecies from
// the reference sheet.
package covstats

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/GuilleGorines/nf-core-pikavirus/refsheet"
	arg "github.com/alexflint/go-arg"
	"github.com/fatih/color"
	"go4.org/sort"
)

type cliargs struct {
	Thresholds string   `arg:"-t,help:comma-separated depth cutoffs reported as >=xN columns"`
	NoLink     bool     `arg:"help:do not link valid coverage files for the report stage"`
	Sample     string   `arg:"positional,required,help:sample name used to name outputs"`
	Group      string   `arg:"positional,required,help:organism group (virus bacteria fungi)"`
	Sheet      string   `arg:"positional,required,help:reference sheet mapping assembly files to species"`
	Coverage   []string `arg:"positional,required,help:depth histogram files to aggregate"`
}

// FileStats carries everything derived from one histogram file. Species and
// subspecies travel with the file they were resolved for; later stages never
// reuse labels across files.
type FileStats struct {
	Path       string
	Assembly   string
	Species    string
	Subspecies string
	Stats      []Stats
}

// Main is called from the dispatcher.
func Main() {
	cli := cliargs{Thresholds: "1,10,25,50,75,100"}
	p := arg.MustParse(&cli)

	thresholds, err := parseThresholds(cli.Thresholds)
	if err != nil {
		p.Fail(err.Error())
	}

	idx, err := refsheet.Load(cli.Sheet)
	if err != nil {
		if _, ok := err.(*refsheet.MissingHeaderError); ok {
			c := color.New(color.BgRed).Add(color.Bold)
			fmt.Fprintf(os.Stderr, "%s\n", c.SprintFunc()(err.Error()))
			os.Exit(1)
		}
		log.Fatal(err)
	}

	results := Run(cli.Coverage, idx, thresholds)

	table := fmt.Sprintf("%s_%s_table.tsv", cli.Sample, cli.Group)
	if err := WriteTable(table, thresholds, results); err != nil {
		log.Fatal(err)
	}
	if !cli.NoLink {
		linkValid(cli.Sample, cli.Group, results)
	}
}

func parseThresholds(s string) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(s, ",") {
		t, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || t < 1 {
			return nil, fmt.Errorf("bad depth threshold %q", tok)
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no depth thresholds given")
	}
	sort.Ints(out)
	return out, nil
}

// Run aggregates every histogram file independently and collects results by
// input position, so repeated runs write byte-identical tables. Skipped
// files leave a nil entry.
func Run(paths []string, idx refsheet.Index, thresholds []int) []*FileStats {
	results := make([]*FileStats, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			results[i] = aggregateFile(path, idx, thresholds)
		}(i, path)
	}
	wg.Wait()
	return results
}

// aggregateFile resolves one histogram file against the reference sheet and
// aggregates its contigs. It returns nil when the whole file is skipped:
// unknown assembly, unreadable data, or zero coverage.
func aggregateFile(path string, idx refsheet.Index, thresholds []int) *FileStats {
	id := AssemblyID(path)
	rec, ok := idx[id]
	if !ok {
		log.Printf("covstats: skipping %s: assembly %q not in reference sheet", path, id)
		return nil
	}

	rows, err := ReadHistogram(path)
	if err != nil {
		log.Printf("covstats: skipping %s (assembly %s): %v", path, id, err)
		return nil
	}
	if len(rows) == 0 {
		log.Printf("covstats: skipping %s (assembly %s): empty histogram", path, id)
		return nil
	}
	if IsZeroCoverage(rows) {
		log.Printf("covstats: %s (assembly %s): no bases covered, excluded", path, id)
		return nil
	}

	fr := &FileStats{Path: path, Assembly: id, Species: rec.Species, Subspecies: rec.Subspecies}
	for _, g := range Collapse(GroupByContig(rows)) {
		s, err := Aggregate(g, thresholds)
		if err != nil {
			log.Printf("covstats: %s (assembly %s): dropping contig: %v", path, id, err)
			continue
		}
		s.Species, s.Subspecies, s.Assembly = rec.Species, rec.Subspecies, id
		fr.Stats = append(fr.Stats, s)
	}
	if len(fr.Stats) == 0 {
		log.Printf("covstats: skipping %s (assembly %s): no usable contigs", path, id)
		return nil
	}
	return fr
}

// linkValid mirrors the retained coverage files into a per-sample directory
// for the report stage, each named with the labels of its own assembly.
func linkValid(sample, group string, results []*FileStats) {
	dir := fmt.Sprintf("%s_valid_coverage_files_%s", sample, group)
	if err := os.MkdirAll(dir, 0777); err != nil {
		log.Printf("covstats: could not create %s: %v", dir, err)
		return
	}
	for _, fr := range results {
		if fr == nil {
			continue
		}
		src, err := filepath.Abs(fr.Path)
		if err != nil {
			log.Printf("covstats: could not resolve %s: %v", fr.Path, err)
			continue
		}
		dst := filepath.Join(dir, fmt.Sprintf("%s_%s_%s_%s_coverage.txt",
			sample, SafeLabel(fr.Species), SafeLabel(fr.Subspecies), fr.Assembly))
		if err := os.Symlink(src, dst); err != nil {
			log.Printf("covstats: could not link %s: %v", fr.Path, err)
		}
	}
}
