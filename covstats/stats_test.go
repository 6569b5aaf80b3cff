package covstats

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateMeanSD(t *testing.T) {
	g := Group{Gnm: "seq1", Rows: []Row{
		{Gnm: "seq1", Depth: 0, Frac: 0.5},
		{Gnm: "seq1", Depth: 10, Frac: 0.5},
	}}
	s, err := Aggregate(g, DefaultThresholds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(s.Mean, 5) {
		t.Errorf("mean: expected 5, got %v", s.Mean)
	}
	if !almost(s.SD, 5) {
		t.Errorf("sd: expected 5, got %v", s.SD)
	}
	if s.Min != 0 || s.Max != 10 {
		t.Errorf("min/max: expected 0/10, got %d/%d", s.Min, s.Max)
	}
}

func TestAggregateMedianFirstCrossing(t *testing.T) {
	g := Group{Gnm: "seq1", Rows: []Row{
		{Gnm: "seq1", Depth: 1, Frac: 0.3},
		{Gnm: "seq1", Depth: 2, Frac: 0.3},
		{Gnm: "seq1", Depth: 3, Frac: 0.4},
	}}
	s, err := Aggregate(g, DefaultThresholds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cumulative weight crosses 0.5 at depth 2, not 3.
	if s.Median != 2 {
		t.Errorf("median: expected 2, got %d", s.Median)
	}
}

func TestAggregateUnsortedRows(t *testing.T) {
	g := Group{Gnm: "seq1", Rows: []Row{
		{Gnm: "seq1", Depth: 3, Frac: 0.4},
		{Gnm: "seq1", Depth: 1, Frac: 0.3},
		{Gnm: "seq1", Depth: 2, Frac: 0.3},
	}}
	s, err := Aggregate(g, DefaultThresholds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Median != 2 || s.Min != 1 || s.Max != 3 {
		t.Errorf("expected median 2 min 1 max 3, got %d %d %d", s.Median, s.Min, s.Max)
	}
}

func TestAggregateThresholds(t *testing.T) {
	g := Group{Gnm: "seq1", Rows: []Row{
		{Gnm: "seq1", Depth: 0, Frac: 0.1},
		{Gnm: "seq1", Depth: 5, Frac: 0.2},
		{Gnm: "seq1", Depth: 30, Frac: 0.3},
		{Gnm: "seq1", Depth: 120, Frac: 0.4},
	}}
	s, err := Aggregate(g, DefaultThresholds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.9, 0.7, 0.7, 0.4, 0.4, 0.4}
	if len(s.AtOrAbove) != len(want) {
		t.Fatalf("expected %d threshold fractions, got %d", len(want), len(s.AtOrAbove))
	}
	for i, w := range want {
		if !almost(s.AtOrAbove[i], w) {
			t.Errorf(">=x%d: expected %v, got %v", DefaultThresholds[i], w, s.AtOrAbove[i])
		}
	}
	// fractions never increase with the threshold.
	for i := 1; i < len(s.AtOrAbove); i++ {
		if s.AtOrAbove[i] > s.AtOrAbove[i-1]+1e-12 {
			t.Errorf("threshold fractions must be non-increasing: %v", s.AtOrAbove)
		}
	}
}

func TestAggregateBadWeightSum(t *testing.T) {
	g := Group{Gnm: "seq1", Rows: []Row{
		{Gnm: "seq1", Depth: 1, Frac: 0.2},
		{Gnm: "seq1", Depth: 2, Frac: 0.2},
	}}
	if _, err := Aggregate(g, DefaultThresholds); err == nil {
		t.Error("fractions summing to 0.4 should fail the contig")
	}
	// small truncation error is tolerated.
	g = Group{Gnm: "seq1", Rows: []Row{
		{Gnm: "seq1", Depth: 1, Frac: 0.49995},
		{Gnm: "seq1", Depth: 2, Frac: 0.49996},
	}}
	if _, err := Aggregate(g, DefaultThresholds); err != nil {
		t.Errorf("near-one weight sum should be accepted: %v", err)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if _, err := Aggregate(Group{Gnm: "seq1"}, DefaultThresholds); err == nil {
		t.Error("empty group should fail")
	}
}
