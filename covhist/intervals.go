package covhist

import (
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
	"github.com/brentp/xopen"
)

// span is a half-open genomic interval stored in the exclude tree.
type span struct {
	start, end int
	id         uintptr
}

func (s span) Overlap(b interval.IntRange) bool {
	return s.end > b.Start && s.start < b.End
}
func (s span) ID() uintptr              { return s.id }
func (s span) Range() interval.IntRange { return interval.IntRange{Start: s.start, End: s.end} }

// readExclude loads a bed file of regions whose alignments are left out of
// the tally, one interval tree per chromosome. An empty path gives nil.
func readExclude(path string) map[string]*interval.IntTree {
	if path == "" {
		return nil
	}
	fh, err := xopen.Ropen(path)
	if err != nil {
		log.Fatal(err)
	}
	defer fh.Close()

	trees := make(map[string]*interval.IntTree)
	n := 0
	for {
		line, err := fh.ReadString('\n')
		if err != nil && err != io.EOF {
			log.Fatal(err)
		}
		eof := err == io.EOF
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			if eof {
				break
			}
			continue
		}
		toks := strings.SplitN(line, "\t", 4)
		if len(toks) < 3 {
			log.Fatalf("covhist: bad bed line in %s: %s", path, line)
		}
		start, serr := strconv.Atoi(toks[1])
		end, eerr := strconv.Atoi(toks[2])
		if serr != nil || eerr != nil {
			log.Fatalf("covhist: bad bed line in %s: %s", path, line)
		}
		t, ok := trees[toks[0]]
		if !ok {
			t = &interval.IntTree{}
			trees[toks[0]] = t
		}
		n++
		if err := t.Insert(span{start: start, end: end, id: uintptr(n)}, false); err != nil {
			log.Fatal(err)
		}
		if eof {
			break
		}
	}
	return trees
}

// overlaps reports whether [start, end) hits any excluded interval.
func overlaps(t *interval.IntTree, start, end int) bool {
	if t == nil {
		return false
	}
	hit := false
	t.DoMatching(func(iv interval.IntInterface) bool {
		hit = true
		return true
	}, span{start: start, end: end})
	return hit
}
