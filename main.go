package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/GuilleGorines/nf-core-pikavirus/covhist"
	"github.com/GuilleGorines/nf-core-pikavirus/covplot"
	"github.com/GuilleGorines/nf-core-pikavirus/covstats"
	"github.com/GuilleGorines/nf-core-pikavirus/refsheet"
)

const Version = "1.0.0"

type progPair struct {
	help string
	main func()
}

var progs = map[string]progPair{
	"covstats": progPair{"calculate weighted coverage statistics from depth histograms", covstats.Main},
	"covhist":  progPair{"build a depth histogram table from a bam alignment", covhist.Main},
	"covplot":  progPair{"render per-contig coverage plots from depth histograms", covplot.Main},
	"refsheet": progPair{"build a reference sheet from an NCBI assembly summary", refsheet.Main},
}

func printProgs() {

	var wtr io.Writer = os.Stdout

	fmt.Fprintf(wtr, "pikavirus-tools Version: %s\n\n", Version)
	var keys []string
	l := 5
	for k := range progs {
		keys = append(keys, k)
		if len(k) > l {
			l = len(k)
		}
	}
	fmtr := "%-" + strconv.Itoa(l) + "s : %s\n"
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(wtr, fmtr, k, progs[k].help)

	}
	os.Exit(1)

}

func main() {

	if len(os.Args) < 2 {
		printProgs()
	}
	var p progPair
	var ok bool
	if p, ok = progs[os.Args[1]]; !ok {
		printProgs()
	}
	// remove the prog name from the call
	os.Args = append(os.Args[:1], os.Args[2:]...)
	p.main()
}
