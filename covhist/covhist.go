// Package covhist builds the per-contig depth histogram table that covstats
// consumes, from a bam alignment: one row per (contig, depth) pair plus the
// "genome" aggregate over all contigs, in bedtools-genomecov form.
package covhist

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/GuilleGorines/nf-core-pikavirus/covstats"
	arg "github.com/alexflint/go-arg"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/brentp/xopen"
)

type cliargs struct {
	Q       int    `arg:"-Q,help:mapping quality cutoff"`
	Exclude string `arg:"-x,help:optional bed file of regions to leave out of the tally"`
	Output  string `arg:"-o,help:output path (- for stdout)"`
	Bam     string `arg:"positional,required,help:bam for which to build the histogram"`
}

func pcheck(e error) {
	if e != nil {
		log.Fatal(e)
	}
}

// Main is called from the dispatcher.
func Main() {
	cli := cliargs{Output: "-"}
	arg.MustParse(&cli)
	run(cli)
}

func run(args cliargs) {
	fh, err := os.Open(args.Bam)
	pcheck(err)
	defer fh.Close()

	br, err := bam.NewReader(fh, 2)
	pcheck(err)
	defer br.Close()
	br.Omit(bam.AllVariableLengthData)

	excludes := readExclude(args.Exclude)

	refs := br.Header().Refs()
	// start/end diff array per reference; summing left to right recovers
	// the depth at every base.
	diffs := make([][]int32, len(refs))
	for i, ref := range refs {
		diffs[i] = make([]int32, ref.Len()+1)
	}

	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		pcheck(err)
		if rec.Flags&(sam.Unmapped|sam.Duplicate|sam.QCFail|sam.Secondary|sam.Supplementary) != 0 {
			continue
		}
		if int(rec.MapQ) < args.Q {
			continue
		}
		id := rec.Ref.ID()
		if id < 0 || id >= len(diffs) {
			continue
		}
		s, e := rec.Pos, rec.End()
		if s < 0 || e <= s {
			continue
		}
		if overlaps(excludes[rec.Ref.Name()], s, e) {
			continue
		}
		if e > len(diffs[id])-1 {
			e = len(diffs[id]) - 1
		}
		diffs[id][s]++
		diffs[id][e]--
	}

	wtr, err := xopen.Wopen(args.Output)
	pcheck(err)

	genome := make(map[int]int)
	genomeLen := 0
	for i, ref := range refs {
		counts := tally(diffs[i])
		writeHist(wtr, ref.Name(), counts, ref.Len())
		for depth, bases := range counts {
			genome[depth] += bases
		}
		genomeLen += ref.Len()
	}
	writeHist(wtr, covstats.WholeGenome, genome, genomeLen)
	pcheck(wtr.Close())
}

// tally converts a diff array into depth -> bases counts.
func tally(diff []int32) map[int]int {
	counts := make(map[int]int)
	depth := int32(0)
	for _, d := range diff[:len(diff)-1] {
		depth += d
		counts[int(depth)]++
	}
	return counts
}

// writeHist emits one histogram row per depth, ascending, with the fraction
// of the contig's bases seen at that depth.
func writeHist(w io.Writer, name string, counts map[int]int, length int) {
	depths := make([]int, 0, len(counts))
	for d := range counts {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	for _, d := range depths {
		frac := strconv.FormatFloat(float64(counts[d])/float64(length), 'f', 7, 64)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", name, d, counts[d], length, frac)
	}
}
