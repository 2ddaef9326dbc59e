package primitives

import (
	"fmt"
	"strings"
)

// Range is a half-open interval of integers, [Start, Start+Length).
//
// Ranges are values: nothing in this package mutates a Range once built.
type Range struct {
	Start  uint64
	Length uint64
}

func NewRange(start, length uint64) Range {
	return Range{Start: start, Length: length}
}

// End returns the first integer past the range.
func (r Range) End() uint64 {
	return r.Start + r.Length
}

func (r Range) Empty() bool {
	return r.Length == 0
}

func (r Range) Contains(x uint64) bool {
	return x >= r.Start && x < r.End()
}

// Overlap returns the intersection of two ranges. Ranges that only touch
// (one ends exactly where the other starts) do not overlap.
func (r Range) Overlap(other Range) (Range, bool) {
	lo := max(r.Start, other.Start)
	hi := min(r.End(), other.End())
	if lo >= hi {
		return Range{}, false
	}
	return Range{Start: lo, Length: hi - lo}, true
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End())
}

// MappingRule maps SourceStart+i to DestStart+i for every i < Length.
type MappingRule struct {
	DestStart   uint64
	SourceStart uint64
	Length      uint64
}

// Source returns the interval the rule covers.
func (m MappingRule) Source() Range {
	return Range{Start: m.SourceStart, Length: m.Length}
}

// Map applies the rule to a single value, reporting false when x lies
// outside the rule's source interval.
func (m MappingRule) Map(x uint64) (uint64, bool) {
	if !m.Source().Contains(x) {
		return 0, false
	}
	return m.DestStart + (x - m.SourceStart), true
}

func (m MappingRule) String() string {
	return fmt.Sprintf("%d %d %d", m.DestStart, m.SourceStart, m.Length)
}

// Split cuts r against a single rule.
//
// When r and the rule's source interval overlap, covered is the overlapping
// part already moved into destination space, and remainders holds the parts
// of r before and after the overlap (each only if nonempty). When they do not
// overlap, ok is false and remainders is r itself.
func Split(r Range, rule MappingRule) (covered Range, ok bool, remainders []Range) {
	inter, ok := r.Overlap(rule.Source())
	if !ok {
		return Range{}, false, []Range{r}
	}

	if inter.Start > r.Start {
		remainders = append(remainders, Range{Start: r.Start, Length: inter.Start - r.Start})
	}
	if inter.End() < r.End() {
		remainders = append(remainders, Range{Start: inter.End(), Length: r.End() - inter.End()})
	}

	covered = Range{
		Start:  rule.DestStart + (inter.Start - rule.SourceStart),
		Length: inter.Length,
	}
	return covered, true, remainders
}

// RangeSet is an unordered collection of ranges.
type RangeSet []Range

// TotalLength is the number of integers covered, counting overlaps twice.
func (s RangeSet) TotalLength() uint64 {
	var total uint64
	for _, r := range s {
		total += r.Length
	}
	return total
}

// MinStart returns the smallest start in the set, or false for an empty set.
func (s RangeSet) MinStart() (uint64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	least := s[0].Start
	for _, r := range s[1:] {
		least = min(least, r.Start)
	}
	return least, true
}

func (s RangeSet) Clone() RangeSet {
	if s == nil {
		return nil
	}
	out := make(RangeSet, len(s))
	copy(out, s)
	return out
}

func (s RangeSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = r.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
