package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/pdrpinto/coverage"
	"github.com/pdrpinto/coverage/internal/config"
	"github.com/pdrpinto/coverage/internal/logging"
	"github.com/pdrpinto/coverage/internal/report"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Plan one coverage path and print the result",
		Long: `Loads the grid (from --grid or the built-in 5x5 area), runs the planner
under the configured deadline and prints steps, cost and final position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			grid, err := loadGrid(cfg.GridFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			start := coverage.Position{Row: cfg.Start.Row, Col: cfg.Start.Col}
			result, runErr := coverage.RunWithDeadline(ctx, grid, cfg.StepBudget, start, cfg.Deadline, plannerOptions(cfg, logger)...)
			if runErr != nil && !isNoResult(runErr) {
				return runErr
			}

			out := cmd.OutOrStdout()
			report.Print(out, result, cfg.StepBudget, runErr)
			if runErr != nil {
				return nil
			}
			if summary, _ := cmd.Flags().GetBool("summary"); summary {
				report.PrintSummary(out, report.Summarize(grid, result))
			}
			if heatmap, _ := cmd.Flags().GetBool("heatmap"); heatmap {
				report.Heatmap(out, termenv.NewOutput(out).EnvColorProfile(), grid, result)
			}
			return nil
		},
	}

	runCmd.Flags().String("grid", "", "Whitespace-delimited grid file (default: built-in 5x5 grid)")
	runCmd.Flags().Int("steps", 0, "Step budget")
	runCmd.Flags().Duration("deadline", 0, "Wall-clock limit for the run")
	runCmd.Flags().Int("trail", 0, "Number of recently vacated cells to avoid")
	runCmd.Flags().Duration("pause", 0, "Simulated duration of each tick")
	runCmd.Flags().Float64("explore", 0, "Probability of a random move each tick")
	runCmd.Flags().Int64("seed", 0, "Random seed (0 seeds from the clock)")
	runCmd.Flags().String("start", "", "Start cell as row,col")
	runCmd.Flags().Bool("summary", false, "Print coverage statistics")
	runCmd.Flags().Bool("heatmap", false, "Print per-cell visit counts")
	return runCmd
}

// loadConfig reads --config (if any) and applies flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if flags.Changed("grid") {
		cfg.GridFile, _ = flags.GetString("grid")
	}
	if flags.Changed("steps") {
		cfg.StepBudget, _ = flags.GetInt("steps")
	}
	if flags.Changed("deadline") {
		cfg.Deadline, _ = flags.GetDuration("deadline")
	}
	if flags.Changed("trail") {
		cfg.TrailLength, _ = flags.GetInt("trail")
	}
	if flags.Changed("pause") {
		cfg.TickPause, _ = flags.GetDuration("pause")
	}
	if flags.Changed("explore") {
		cfg.ExploreProbability, _ = flags.GetFloat64("explore")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("start") {
		raw, _ := flags.GetString("start")
		start, err := parseStart(raw)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Start = start
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func parseStart(raw string) (config.Start, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return config.Start{}, fmt.Errorf("invalid --start %q: want row,col", raw)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return config.Start{}, fmt.Errorf("invalid --start row: %w", err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return config.Start{}, fmt.Errorf("invalid --start col: %w", err)
	}
	return config.Start{Row: row, Col: col}, nil
}

func newLogger(level string) (*slog.Logger, error) {
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(parsed), nil
}

func loadGrid(path string) (*coverage.Grid, error) {
	if path == "" {
		return coverage.DefaultGrid(), nil
	}
	return coverage.LoadGridFile(path)
}

func plannerOptions(cfg config.Config, logger *slog.Logger) []coverage.Option {
	options := []coverage.Option{
		coverage.WithTrailLength(cfg.TrailLength),
		coverage.WithTickPause(cfg.TickPause),
		coverage.WithExploreProbability(cfg.ExploreProbability),
		coverage.WithLogger(logger),
	}
	if cfg.Seed != 0 {
		options = append(options, coverage.WithSeed(cfg.Seed))
	} else {
		options = append(options, coverage.WithSeed(time.Now().UnixNano()))
	}
	return options
}

func isNoResult(err error) bool {
	return errors.Is(err, coverage.ErrNoResult)
}
