package primitives

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// coalesce returns the integers covered by s as sorted, merged ranges, so two
// sets can be compared by what they cover rather than how they are cut.
func coalesce(s RangeSet) RangeSet {
	sorted := slices.Clone(s)
	slices.SortFunc(sorted, func(a, b Range) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})

	var out RangeSet
	for _, r := range sorted {
		if r.Empty() {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End() >= r.Start {
			end := max(out[n-1].End(), r.End())
			out[n-1].Length = end - out[n-1].Start
			continue
		}
		out = append(out, r)
	}
	return out
}

// mapValue is the point-wise oracle the range evaluator is checked against.
func mapValue(s Stage, x uint64) uint64 {
	for _, rule := range s.Rules {
		if y, ok := rule.Map(x); ok {
			return y
		}
	}
	return x
}

// randomStage builds a stage over [0, span) with disjoint rule sources.
func randomStage(rng *rand.Rand, span uint64) Stage {
	var s Stage
	for start := uint64(0); start < span; {
		length := 1 + rng.Uint64N(span/4)
		if start+length > span {
			length = span - start
		}
		if rng.IntN(3) > 0 {
			s.Rules = append(s.Rules, MappingRule{
				DestStart:   rng.Uint64N(span * 2),
				SourceStart: start,
				Length:      length,
			})
		}
		start += length
	}
	rng.Shuffle(len(s.Rules), func(i, j int) {
		s.Rules[i], s.Rules[j] = s.Rules[j], s.Rules[i]
	})
	return s
}

func randomRangeSet(rng *rand.Rand, span uint64, n int) RangeSet {
	set := make(RangeSet, 0, n)
	for range n {
		start := rng.Uint64N(span)
		set = append(set, NewRange(start, 1+rng.Uint64N(span-start)))
	}
	return set
}

var soilStage = Stage{
	Name: "seed-to-soil",
	Rules: []MappingRule{
		{DestStart: 50, SourceStart: 98, Length: 2},
		{DestStart: 52, SourceStart: 50, Length: 48},
	},
}

func TestStage_Apply_Sample(t *testing.T) {
	seeds := RangeSet{NewRange(79, 14), NewRange(55, 13)}

	got := soilStage.Apply(seeds)

	want := RangeSet{NewRange(57, 13), NewRange(81, 14)}
	if diff := cmp.Diff(want, coalesce(got)); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
	if least, _ := got.MinStart(); least != 57 {
		t.Errorf("MinStart() = %d, want 57", least)
	}
}

func TestStage_Apply(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		in    RangeSet
		want  RangeSet
	}{
		{
			name:  "empty set",
			stage: soilStage,
			in:    nil,
			want:  nil,
		},
		{
			name:  "empty stage is identity",
			stage: Stage{},
			in:    RangeSet{NewRange(3, 4), NewRange(100, 1)},
			want:  RangeSet{NewRange(3, 4), NewRange(100, 1)},
		},
		{
			name:  "range touching rule start is untouched",
			stage: Stage{Rules: []MappingRule{{DestStart: 500, SourceStart: 10, Length: 5}}},
			in:    RangeSet{NewRange(0, 10)},
			want:  RangeSet{NewRange(0, 10)},
		},
		{
			name:  "range touching rule end is untouched",
			stage: Stage{Rules: []MappingRule{{DestStart: 500, SourceStart: 10, Length: 5}}},
			in:    RangeSet{NewRange(15, 10)},
			want:  RangeSet{NewRange(15, 10)},
		},
		{
			name: "range spans several rules with gaps",
			stage: Stage{Rules: []MappingRule{
				{DestStart: 1000, SourceStart: 10, Length: 10},
				{DestStart: 2000, SourceStart: 30, Length: 10},
				{DestStart: 3000, SourceStart: 50, Length: 10},
			}},
			in: RangeSet{NewRange(0, 70)},
			want: RangeSet{
				NewRange(0, 10), NewRange(20, 10), NewRange(40, 10), NewRange(60, 10),
				NewRange(1000, 10), NewRange(2000, 10), NewRange(3000, 10),
			},
		},
		{
			name: "adjacent rules",
			stage: Stage{Rules: []MappingRule{
				{DestStart: 200, SourceStart: 5, Length: 5},
				{DestStart: 100, SourceStart: 0, Length: 5},
			}},
			in:   RangeSet{NewRange(3, 4)},
			want: RangeSet{NewRange(103, 2), NewRange(200, 2)},
		},
		{
			name: "swap halves",
			stage: Stage{Rules: []MappingRule{
				{DestStart: 0, SourceStart: 50, Length: 50},
				{DestStart: 50, SourceStart: 0, Length: 50},
			}},
			in:   RangeSet{NewRange(40, 20)},
			want: RangeSet{NewRange(0, 10), NewRange(90, 10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.stage.Apply(tt.in)
			if diff := cmp.Diff(coalesce(tt.want), coalesce(got)); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
			if got.TotalLength() != tt.in.TotalLength() {
				t.Errorf("Apply() total length = %d, want %d", got.TotalLength(), tt.in.TotalLength())
			}
		})
	}
}

func TestStage_Apply_DoesNotMutateInput(t *testing.T) {
	in := RangeSet{NewRange(79, 14), NewRange(55, 13)}
	orig := in.Clone()
	soilStage.Apply(in)
	if diff := cmp.Diff(orig, in); diff != "" {
		t.Errorf("Apply() mutated its input (-want +got):\n%s", diff)
	}
}

func TestStage_Apply_Conservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1024))
	for range 200 {
		stage := randomStage(rng, 1000)
		in := randomRangeSet(rng, 1000, 1+rng.IntN(5))

		got := stage.Apply(in)
		if got.TotalLength() != in.TotalLength() {
			t.Fatalf("Apply(%v) with %v: total length = %d, want %d", in, stage.Rules, got.TotalLength(), in.TotalLength())
		}
	}
}

func TestStage_Apply_IdentityStage(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 50 {
		in := randomRangeSet(rng, 1<<40, 1+rng.IntN(8))
		got := Stage{}.Apply(in)
		if diff := cmp.Diff(coalesce(in), coalesce(got)); diff != "" {
			t.Fatalf("empty stage changed the set (-want +got):\n%s", diff)
		}
	}
}

func TestStage_Apply_RuleOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		stage := randomStage(rng, 500)
		in := randomRangeSet(rng, 500, 1+rng.IntN(4))
		want := coalesce(stage.Apply(in))

		shuffled := Stage{Rules: slices.Clone(stage.Rules)}
		rng.Shuffle(len(shuffled.Rules), func(i, j int) {
			shuffled.Rules[i], shuffled.Rules[j] = shuffled.Rules[j], shuffled.Rules[i]
		})

		if diff := cmp.Diff(want, coalesce(shuffled.Apply(in))); diff != "" {
			t.Fatalf("rule order changed the image of %v (-want +got):\n%s", in, diff)
		}
	}
}

func TestStage_Apply_MatchesPointwise(t *testing.T) {
	const span = 120
	rng := rand.New(rand.NewPCG(3, 14))

	for range 50 {
		stage := randomStage(rng, span)

		// Every singleton lands exactly where the scalar mapping puts it.
		for x := range uint64(span + 10) {
			got := stage.Apply(RangeSet{NewRange(x, 1)})
			want := RangeSet{NewRange(mapValue(stage, x), 1)}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("Apply({%d}) with %v mismatch (-want +got):\n%s", x, stage.Rules, diff)
			}
		}

		// A whole range covers exactly the images of its members.
		in := randomRangeSet(rng, span, 1)
		var points RangeSet
		for x := in[0].Start; x < in[0].End(); x++ {
			points = append(points, NewRange(mapValue(stage, x), 1))
		}
		if diff := cmp.Diff(coalesce(points), coalesce(stage.Apply(in))); diff != "" {
			t.Fatalf("Apply(%v) with %v mismatch (-want +got):\n%s", in, stage.Rules, diff)
		}
	}
}

func TestStage_Apply_LargeRanges(t *testing.T) {
	const billion = 1_000_000_000
	stage := Stage{Rules: []MappingRule{
		{DestStart: 0, SourceStart: 3 * billion, Length: 2 * billion},
		{DestStart: 8 * billion, SourceStart: 0, Length: billion},
	}}
	in := RangeSet{NewRange(500_000_000, 4*billion)}

	got := stage.Apply(in)

	want := RangeSet{
		NewRange(0, billion+500_000_000),
		NewRange(billion, 2*billion),
		NewRange(8*billion+500_000_000, 500_000_000),
	}
	if diff := cmp.Diff(coalesce(want), coalesce(got)); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkStage_Apply(b *testing.B) {
	rng := rand.New(rand.NewPCG(42, 1024))
	stage := randomStage(rng, 1<<32)
	in := randomRangeSet(rng, 1<<32, 20)
	b.ReportAllocs()

	for b.Loop() {
		stage.Apply(in)
	}
}
