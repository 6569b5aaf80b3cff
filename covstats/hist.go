package covstats

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GuilleGorines/nf-core-pikavirus/refsheet"
	"github.com/brentp/xopen"
)

// WholeGenome is the synthetic contig name under which the histogram
// aggregates every sequence of an assembly.
const WholeGenome = "genome"

// Row is one line of a depth histogram in bedtools-genomecov form: the
// number (and fraction) of a contig's bases observed at one depth.
type Row struct {
	Gnm    string
	Depth  int
	Bases  int
	Length int
	Frac   float64
}

// Group holds the rows of one contig within one histogram file, in file order.
type Group struct {
	Gnm  string
	Rows []Row
}

// ReadHistogram parses a 5-column tab-separated depth histogram. The file
// has no header. Any structurally bad line fails the whole file; a corrupt
// histogram must not feed the statistics.
func ReadHistogram(path string) ([]Row, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var rows []Row
	n := 0
	for {
		line, err := fh.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		eof := err == io.EOF
		line = strings.TrimRight(line, "\r\n")
		n++
		if line != "" {
			row, perr := parseRow(line)
			if perr != nil {
				return nil, fmt.Errorf("line %d: %v", n, perr)
			}
			rows = append(rows, row)
		}
		if eof {
			break
		}
	}
	return rows, nil
}

func parseRow(line string) (Row, error) {
	toks := strings.Split(line, "\t")
	if len(toks) != 5 {
		return Row{}, fmt.Errorf("expected 5 columns, got %d", len(toks))
	}
	depth, err := strconv.Atoi(toks[1])
	if err != nil {
		return Row{}, fmt.Errorf("bad depth %q", toks[1])
	}
	bases, err := strconv.Atoi(toks[2])
	if err != nil {
		return Row{}, fmt.Errorf("bad base count %q", toks[2])
	}
	length, err := strconv.Atoi(toks[3])
	if err != nil {
		return Row{}, fmt.Errorf("bad contig length %q", toks[3])
	}
	frac, err := strconv.ParseFloat(toks[4], 64)
	if err != nil {
		return Row{}, fmt.Errorf("bad fraction %q", toks[4])
	}
	if depth < 0 || bases < 0 || length <= 0 || frac < 0 {
		return Row{}, fmt.Errorf("negative value in row %q", line)
	}
	return Row{Gnm: toks[0], Depth: depth, Bases: bases, Length: length, Frac: frac}, nil
}

// AssemblyID derives the reference-sheet key for a histogram file: the part
// of the base name before "_vs_", with the alignment and assembly extensions
// stripped.
func AssemblyID(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".sam")
	if i := strings.Index(name, "_vs_"); i >= 0 {
		name = name[:i]
	}
	return refsheet.StripExtensions(name)
}

// IsZeroCoverage reports whether the histogram records no alignment at all,
// i.e. the whole-genome row at depth zero covers every base. Such files are
// excluded from aggregation entirely.
func IsZeroCoverage(rows []Row) bool {
	for _, r := range rows {
		if r.Gnm == WholeGenome && r.Depth == 0 {
			return r.Frac >= 1
		}
	}
	return false
}

// GroupByContig splits rows per contig, preserving contig appearance order
// and row order within each contig.
func GroupByContig(rows []Row) []Group {
	var groups []Group
	at := make(map[string]int)
	for _, r := range rows {
		i, ok := at[r.Gnm]
		if !ok {
			i = len(groups)
			at[r.Gnm] = i
			groups = append(groups, Group{Gnm: r.Gnm})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Collapse drops the redundant whole-genome group when a file holds exactly
// one real contig: the "genome" aggregate then duplicates that contig and
// would produce two identical table rows.
func Collapse(groups []Group) []Group {
	if len(groups) != 2 {
		return groups
	}
	if groups[0].Gnm != WholeGenome && groups[1].Gnm != WholeGenome {
		return groups
	}
	out := make([]Group, 0, 1)
	for _, g := range groups {
		if g.Gnm != WholeGenome {
			out = append(out, g)
		}
	}
	return out
}
