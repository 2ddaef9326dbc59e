package aoc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"crosswarped.com/aoc/pkg/primitives"
)

// ErrMalformedAlmanac is wrapped by every error ParseAlmanac and the seed
// accessors return.
var ErrMalformedAlmanac = errors.New("malformed almanac")

const (
	seedsPrefix = "seeds:"
	mapSuffix   = " map:"
)

// Almanac is a parsed puzzle input: the seed numbers and the ordered stages
// that take a seed to a location.
type Almanac struct {
	Seeds  []uint64
	Stages []primitives.Stage
}

// ParseAlmanac reads an almanac of the form
//
//	seeds: 79 14 55 13
//
//	seed-to-soil map:
//	50 98 2
//	52 50 48
//
// Blank lines separate stages. Each rule line is "<dest> <source> <length>".
// Any deviation is reported with its line number.
func ParseAlmanac(r io.Reader) (*Almanac, error) {
	var (
		a        Almanac
		sawSeeds bool
		lineNo   int
	)
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrMalformedAlmanac, lineNo, fmt.Sprintf(format, args...))
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, seedsPrefix):
			if sawSeeds {
				return nil, malformed("duplicate seeds line")
			}
			sawSeeds = true
			seeds, err := parseNumbers(strings.TrimPrefix(line, seedsPrefix))
			if err != nil {
				return nil, malformed("%v", err)
			}
			a.Seeds = seeds

		case strings.HasSuffix(line, mapSuffix):
			if !sawSeeds {
				return nil, malformed("map %q before the seeds line", line)
			}
			name := strings.TrimSpace(strings.TrimSuffix(line, mapSuffix))
			a.Stages = append(a.Stages, primitives.Stage{Name: name})

		default:
			if len(a.Stages) == 0 {
				return nil, malformed("rule %q outside of a map", line)
			}
			rule, err := parseRule(line)
			if err != nil {
				return nil, malformed("%v", err)
			}
			stage := &a.Stages[len(a.Stages)-1]
			stage.Rules = append(stage.Rules, rule)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Err: %w", err)
	}
	if !sawSeeds {
		return nil, fmt.Errorf("%w: no seeds line", ErrMalformedAlmanac)
	}
	return &a, nil
}

func parseNumbers(s string) ([]uint64, error) {
	fields := strings.Fields(s)
	out := make([]uint64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric token %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseRule(line string) (primitives.MappingRule, error) {
	nums, err := parseNumbers(line)
	if err != nil {
		return primitives.MappingRule{}, err
	}
	if len(nums) != 3 {
		return primitives.MappingRule{}, fmt.Errorf("rule %q has %d numbers, want 3", line, len(nums))
	}

	rule := primitives.MappingRule{DestStart: nums[0], SourceStart: nums[1], Length: nums[2]}
	if rule.Length == 0 {
		return rule, fmt.Errorf("rule %q has zero length", line)
	}
	if overflows(rule.SourceStart, rule.Length) || overflows(rule.DestStart, rule.Length) {
		return rule, fmt.Errorf("rule %q runs past the largest representable value", line)
	}
	return rule, nil
}

func overflows(start, length uint64) bool {
	return length > math.MaxUint64-start
}

// SeedPoints treats every seed number as a range of one value.
func (a *Almanac) SeedPoints() (primitives.RangeSet, error) {
	set := make(primitives.RangeSet, 0, len(a.Seeds))
	for _, seed := range a.Seeds {
		if overflows(seed, 1) {
			return nil, fmt.Errorf("%w: seed %d out of range", ErrMalformedAlmanac, seed)
		}
		set = append(set, primitives.NewRange(seed, 1))
	}
	return set, nil
}

// SeedRanges reads the seed numbers as (start, length) pairs.
func (a *Almanac) SeedRanges() (primitives.RangeSet, error) {
	if len(a.Seeds)%2 != 0 {
		return nil, fmt.Errorf("%w: %d seed numbers do not form (start, length) pairs", ErrMalformedAlmanac, len(a.Seeds))
	}
	set := make(primitives.RangeSet, 0, len(a.Seeds)/2)
	for i := 0; i < len(a.Seeds); i += 2 {
		start, length := a.Seeds[i], a.Seeds[i+1]
		if length == 0 {
			return nil, fmt.Errorf("%w: seed range at %d has zero length", ErrMalformedAlmanac, start)
		}
		if overflows(start, length) {
			return nil, fmt.Errorf("%w: seed range at %d runs past the largest representable value", ErrMalformedAlmanac, start)
		}
		set = append(set, primitives.NewRange(start, length))
	}
	return set, nil
}
