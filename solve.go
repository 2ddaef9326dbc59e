package aoc

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crosswarped.com/aoc/pkg/primitives"
)

func init() {
	Register(2023, 5, SolveAlmanac)
}

// Locations holds the lowest location reached by each reading of the seeds.
type Locations struct {
	// FromSeeds reads every seed number as a single seed.
	FromSeeds uint64
	// FromSeedRanges reads the seed numbers as (start, length) pairs.
	FromSeedRanges uint64
}

// LowestLocations runs both readings of the seeds through the almanac's
// stages. The two pipelines are independent and run concurrently.
func LowestLocations(ctx context.Context, a *Almanac, logger *zap.Logger) (Locations, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	points, err := a.SeedPoints()
	if err != nil {
		return Locations{}, err
	}
	ranges, err := a.SeedRanges()
	if err != nil {
		return Locations{}, err
	}

	var loc Locations
	g, gCtx := errgroup.WithContext(ctx)
	run := func(name string, initial primitives.RangeSet, out *uint64) func() error {
		return func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p := NewPipeline(a.Stages, logger.With(zap.String("seeds", name)))
			lowest, ok := p.Lowest(initial)
			if !ok {
				return fmt.Errorf("%w: no seeds", ErrMalformedAlmanac)
			}
			*out = lowest
			return nil
		}
	}
	g.Go(run("points", points, &loc.FromSeeds))
	g.Go(run("ranges", ranges, &loc.FromSeedRanges))
	if err := g.Wait(); err != nil {
		return Locations{}, err
	}
	return loc, nil
}

// SolveAlmanac is the registered solver for the almanac puzzle.
func SolveAlmanac(ctx context.Context, input io.Reader, logger *zap.Logger) (Answer, error) {
	a, err := ParseAlmanac(input)
	if err != nil {
		return Answer{}, fmt.Errorf("ParseAlmanac: %w", err)
	}
	loc, err := LowestLocations(ctx, a, logger)
	if err != nil {
		return Answer{}, fmt.Errorf("LowestLocations: %w", err)
	}
	return Answer{
		PartOne: strconv.FormatUint(loc.FromSeeds, 10),
		PartTwo: strconv.FormatUint(loc.FromSeedRanges, 10),
	}, nil
}
