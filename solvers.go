package aoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var ErrUnknownPuzzle = errors.New("no solver registered for puzzle")

// Answer is the pair of answers a daily puzzle asks for.
type Answer struct {
	PartOne string `json:"partOne"`
	PartTwo string `json:"partTwo"`
}

// SolverFunc solves one day's puzzle from its raw input text.
type SolverFunc func(ctx context.Context, input io.Reader, logger *zap.Logger) (Answer, error)

// PuzzleID names a daily puzzle.
type PuzzleID struct {
	Year int
	Day  int
}

func (id PuzzleID) String() string {
	return fmt.Sprintf("%d/%d", id.Year, id.Day)
}

var (
	registryMu sync.RWMutex
	registry   = map[PuzzleID]SolverFunc{}
)

// Register makes a solver available through Lookup. Registering the same
// puzzle twice panics.
func Register(year, day int, f SolverFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()

	id := PuzzleID{Year: year, Day: day}
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("solver for %v registered twice", id))
	}
	registry[id] = f
}

func Lookup(year, day int) (SolverFunc, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[PuzzleID{Year: year, Day: day}]
	if !ok {
		return nil, fmt.Errorf("%w: %d/%d", ErrUnknownPuzzle, year, day)
	}
	return f, nil
}

// Registered lists every puzzle with a solver, oldest first.
func Registered() []PuzzleID {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]PuzzleID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Year != ids[j].Year {
			return ids[i].Year < ids[j].Year
		}
		return ids[i].Day < ids[j].Day
	})
	return ids
}
