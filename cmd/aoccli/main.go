package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crosswarped.com/aoc"
	"crosswarped.com/aoc/internal"
)

var (
	verbose    bool
	configPath string
	year       int
	day        int
	inputFile  string
	timeout    time.Duration

	profile           bool
	profileFile       string
	memoryProfileFile string

	logger *zap.Logger
	cfg    internal.Config
)

var rootCmd = &cobra.Command{
	Use:   "aoccli",
	Short: "Fetch and solve daily puzzles",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = internal.LoadConfig(configPath); err != nil {
			return err
		}

		config := zap.NewProductionConfig()
		if verbose || cfg.LogLevel == "debug" {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
		if logger, err = config.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if year == 0 {
			year = cfg.Year
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a puzzle from a file or the fetched input",
	RunE:  runSolve,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print a puzzle's input, downloading it on first use",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		input, err := fetchInput(ctx)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(input)
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List puzzles with a solver",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range aoc.Registered() {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "aoc.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().IntVar(&year, "year", 0, "Event year (defaults to the config's year)")
	rootCmd.PersistentFlags().IntVar(&day, "day", 5, "Puzzle day")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 1*time.Minute, "Timeout for fetching and solving")

	solveCmd.Flags().StringVar(&inputFile, "file", "", "Read the puzzle input from this file instead of fetching it")
	solveCmd.Flags().BoolVar(&profile, "profile", false, "Profile the solver")
	solveCmd.Flags().StringVar(&profileFile, "profile-file", "cpu.pprof", "The file to write the CPU profile to")
	solveCmd.Flags().StringVar(&memoryProfileFile, "memory-profile-file", "mem.pprof", "The file to write the memory profile to")

	rootCmd.AddCommand(solveCmd, fetchCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fetchInput(ctx context.Context) ([]byte, error) {
	cache, err := internal.OpenCache(cfg.CacheDir, logger)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	f := internal.NewFetcher(cfg, cache, logger)
	defer f.Close()

	return f.Input(ctx, year, day)
}

func runSolve(cmd *cobra.Command, args []string) error {
	solve, err := aoc.Lookup(year, day)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var input io.Reader
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("os.Open: %w", err)
		}
		defer f.Close()
		input = f
	} else {
		raw, err := fetchInput(ctx)
		if err != nil {
			return err
		}
		input = bytes.NewReader(raw)
	}

	var mf *os.File
	if profile {
		f, err := os.Create(profileFile)
		if err != nil {
			return fmt.Errorf("error creating profile file: %w", err)
		}
		defer f.Close()

		mf, err = os.Create(memoryProfileFile)
		if err != nil {
			return fmt.Errorf("error creating memory profile file: %w", err)
		}
		defer mf.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("error starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()
	answer, err := solve(ctx, input, logger)
	if err != nil {
		logger.Error("Solve failed", zap.Int("year", year), zap.Int("day", day), zap.Error(err))
		return err
	}
	logger.Debug("Solved", zap.Int("year", year), zap.Int("day", day), zap.Duration("took", time.Since(start)))

	fmt.Fprintln(cmd.OutOrStdout(), "Part 1:", answer.PartOne)
	fmt.Fprintln(cmd.OutOrStdout(), "Part 2:", answer.PartTwo)

	if mf != nil {
		if err := pprof.WriteHeapProfile(mf); err != nil {
			return fmt.Errorf("error writing memory profile: %w", err)
		}
	}
	return nil
}
