package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifegrid/lifegrid/internal/life/barrier"
	"github.com/lifegrid/lifegrid/internal/life/engine"
	"github.com/lifegrid/lifegrid/internal/life/grid"
	"github.com/lifegrid/lifegrid/internal/report"
	"github.com/lifegrid/lifegrid/pkg/lifeerrors"
	"github.com/lifegrid/lifegrid/pkg/lifelog"
)

var (
	// Global flags
	verbose bool
	logger  lifelog.Logger

	// Grid flags
	width      int
	height     int
	steps      int
	iterations int
	threads    int
	inputPath  string
	seed       int64
	debug      bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "lifegrid",
	Short: "A parallel Conway's Game of Life engine",
	Long: `lifegrid runs Conway's Game of Life on a toroidal grid, advancing a
configurable number of generations with a configurable number of worker
goroutines, and reports per-phase timing on completion.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := lifelog.LevelInfo
		if verbose {
			logLevel = lifelog.LevelDebug
		}
		logger = lifelog.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
	RunE: runLifegrid,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetLogger returns the configured logger.
func GetLogger() lifelog.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.Flags().IntVarP(&width, "width", "w", 100, "Interior grid width")
	rootCmd.Flags().IntVarP(&height, "height", "h", 100, "Interior grid height")
	rootCmd.Flags().IntVarP(&steps, "steps", "s", 100, "Generations to run")
	rootCmd.Flags().IntVarP(&iterations, "iterations", "i", 0, "Generations to run (wins over --steps when set)")
	rootCmd.Flags().IntVarP(&threads, "thread", "t", runtime.NumCPU(), "Worker count; 0 or 1 selects the sequential path")
	rootCmd.Flags().StringVar(&inputPath, "input", "", "Read the initial grid from an ASCII file instead of random-filling it")
	rootCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "RNG seed for the random initial fill")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Print the grid after every generation")

	// Unknown flags are silently ignored rather than rejected, matching the
	// original CLI's permissive argument handling.
	rootCmd.FParseErrWhitelist.UnknownFlags = true

	binName := BinName()
	rootCmd.Example = `  # Run 200 generations on a 50x50 random grid with 4 workers
  ` + binName + ` -w 50 -h 50 -s 200 -t 4

  # Load an initial grid from a file and run with debug output
  ` + binName + ` --input ./glider.txt -s 40 --debug`
}

func runLifegrid(cmd *cobra.Command, args []string) error {
	gens := steps
	if iterations > 0 {
		gens = iterations
	}

	var g *grid.Grid
	var err error

	if inputPath != "" {
		f, openErr := os.Open(inputPath)
		if openErr != nil {
			return reportFailure(lifeerrors.Wrap(lifeerrors.CodeIOError, "opening input file", openErr))
		}
		defer f.Close()
		g, err = grid.LoadASCII(f)
		if err != nil {
			return reportFailure(err)
		}
		width, height = g.Width(), g.Height()
	} else {
		g, err = grid.New(height, width)
		if err != nil {
			return reportFailure(err)
		}
		g.RandomFill(seed)
		g.CopyBorder()
	}

	cfg := engine.DefaultConfig()
	cfg.Generations = gens
	cfg.Workers = threads
	cfg.Variant = barrier.VariantMutex
	cfg.Debug = debug
	if debug {
		cfg.DebugOutput = os.Stdout
	}

	if threads <= 1 {
		logger.Warn("thread count %d falls back to the sequential path; no barrier variant is exercised", threads)
	}
	logger.Debug("selected synchronization variant: %s", cfg.Variant)

	logger.Info("=== lifegrid ===")
	logger.Info("Width:       %d", width)
	logger.Info("Height:      %d", height)
	logger.Info("Generations: %d", gens)
	logger.Info("Threads:     %d", threads)
	logger.Info("Seed:        %d", seed)
	if inputPath != "" {
		logger.Info("Input:       %s", inputPath)
	}
	logger.Info("")

	if debug {
		g.Print("Initial", false, os.Stdout)
	}

	e, err := engine.New(cfg, g)
	if err != nil {
		return reportFailure(err)
	}

	stats, err := e.Run(context.Background())
	if err != nil {
		return reportFailure(err)
	}

	report.WriteSummary(os.Stdout, stats.Timer)
	return nil
}

// reportFailure writes the single diagnostic line the engine's error
// handling design requires and returns an error so Execute exits 1.
func reportFailure(err error) error {
	fmt.Fprintln(os.Stderr, lifeerrors.GetErrorMessage(err))
	return err
}
