package covstats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GuilleGorines/nf-core-pikavirus/refsheet"
)

var testIndex = refsheet.Index{
	"GCF_1": {Species: "Influenza A virus", Subspecies: "H3N2"},
	"GCF_2": {Species: "Human mastadenovirus C", Subspecies: "--"},
}

func TestRunSkipsAndOrder(t *testing.T) {
	dir := t.TempDir()

	// single contig: the genome aggregate collapses away.
	valid := writeFile(t, dir, "GCF_1.fna.gz_vs_s1.sam",
		"seq1\t0\t40\t100\t0.4\n"+
			"seq1\t2\t60\t100\t0.6\n"+
			"genome\t0\t40\t100\t0.4\n"+
			"genome\t2\t60\t100\t0.6\n")
	unknown := writeFile(t, dir, "GCF_404_vs_s1.sam",
		"seq1\t1\t100\t100\t1.0\n")
	zero := writeFile(t, dir, "GCF_2.fna.gz_vs_s1.sam",
		"seq1\t0\t50\t50\t1.0\n"+
			"genome\t0\t50\t50\t1.0\n")

	results := Run([]string{valid, unknown, zero}, testIndex, DefaultThresholds)
	if len(results) != 3 {
		t.Fatalf("expected one slot per input file, got %d", len(results))
	}
	if results[1] != nil {
		t.Error("file with no reference entry should be skipped")
	}
	if results[2] != nil {
		t.Error("zero-coverage file should be excluded")
	}
	fr := results[0]
	if fr == nil {
		t.Fatal("valid file should produce results")
	}
	if len(fr.Stats) != 1 || fr.Stats[0].Gnm != "seq1" {
		t.Fatalf("expected only the named contig after collapse, got %+v", fr.Stats)
	}
	s := fr.Stats[0]
	if s.Species != "Influenza A virus" || s.Subspecies != "H3N2" || s.Assembly != "GCF_1" {
		t.Errorf("unexpected annotation: %+v", s)
	}
}

func TestRunDropsBadContigOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "GCF_1_vs_s1.sam",
		"seq1\t1\t10\t100\t0.1\n"+ // fractions sum to 0.1: dropped
			"seq2\t0\t40\t100\t0.4\n"+
			"seq2\t3\t60\t100\t0.6\n"+
			"genome\t0\t40\t200\t0.2\n"+
			"genome\t1\t50\t200\t0.25\n"+
			"genome\t3\t110\t200\t0.55\n")

	results := Run([]string{path}, testIndex, DefaultThresholds)
	fr := results[0]
	if fr == nil {
		t.Fatal("file should survive a single bad contig")
	}
	var names []string
	for _, s := range fr.Stats {
		names = append(names, s.Gnm)
	}
	if strings.Join(names, ",") != "seq2,genome" {
		t.Errorf("expected seq2,genome to survive, got %v", names)
	}
}

func TestWriteTableDeterminism(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "GCF_1_vs_s1.sam",
		"seq1\t0\t40\t100\t0.4\nseq1\t2\t60\t100\t0.6\n")
	b := writeFile(t, dir, "GCF_2_vs_s1.sam",
		"chrA\t1\t100\t100\t1.0\n")

	paths := []string{a, b}
	var tables []string
	for i := 0; i < 2; i++ {
		out := filepath.Join(dir, "table.tsv")
		results := Run(paths, testIndex, DefaultThresholds)
		if err := WriteTable(out, DefaultThresholds, results); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		tables = append(tables, string(data))
	}
	if tables[0] != tables[1] {
		t.Error("two runs over the same inputs must write identical tables")
	}

	lines := strings.Split(strings.TrimSuffix(tables[0], "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	header := "gnm\tspecies\tsubspecies\tcovMean\tcovSD\tcovMedian\tcovMin\tcovMax\t>=x1\t>=x10\t>=x25\t>=x50\t>=x75\t>=x100\tassembly"
	if lines[0] != header {
		t.Errorf("unexpected header:\n%s", lines[0])
	}
	// rows come out in input file order.
	if !strings.HasPrefix(lines[1], "seq1\tInfluenza A virus\tH3N2\t") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "chrA\tHuman mastadenovirus C\t--\t") {
		t.Errorf("unexpected second row: %s", lines[2])
	}
	if !strings.HasSuffix(lines[1], "\tGCF_1") || !strings.HasSuffix(lines[2], "\tGCF_2") {
		t.Errorf("rows should end with their assembly id:\n%s\n%s", lines[1], lines[2])
	}
}

func TestParseThresholds(t *testing.T) {
	ts, err := parseThresholds("100,1,50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ts) != 3 || ts[0] != 1 || ts[1] != 50 || ts[2] != 100 {
		t.Errorf("expected sorted [1 50 100], got %v", ts)
	}
	for _, bad := range []string{"", "0", "a,b", "1,-5"} {
		if _, err := parseThresholds(bad); err == nil {
			t.Errorf("parseThresholds(%q): expected an error", bad)
		}
	}
}
