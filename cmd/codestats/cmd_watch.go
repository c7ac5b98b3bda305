package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codestats/internal/analyzer"
	"codestats/internal/format"
	"codestats/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce time.Duration

// watchCmd re-analyzes a directory whenever source files change.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run analysis whenever source files change",
	Long: `Watches a directory tree and reprints the statistics after every
batch of changes to supported source files.

Example:
  codestats watch ./src --format summary`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&formatFlag, "format", "f", "summary", "Output format (summary, detail, json)")
	watchCmd.Flags().StringArrayVar(&ignoreFlags, "ignore", nil, "File patterns to ignore (can be used multiple times)")
	watchCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent file workers (0 = auto)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before re-analysis")
}

// runWatch performs an initial analysis, then keeps re-analyzing as the
// tree changes until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	target := args[0]

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", target)
	}

	opts, outFormat, err := resolveOptions(cmd, target)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := analyzer.New(opts)
	defer a.Close()

	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	rescan := func(ctx context.Context) {
		result, err := a.AnalyzeDirectory(ctx, target)
		if err != nil {
			log.Error("analysis failed", zap.Error(err))
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			return
		}
		out, err := format.Render(result, outFormat)
		if err != nil {
			log.Error("rendering failed", zap.Error(err))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}

	rescan(ctx)

	w, err := watch.New(target, rescan, watch.Options{
		Debounce:       watchDebounce,
		IgnorePatterns: opts.IgnorePatterns,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	fmt.Fprintln(cmd.OutOrStdout(), "\nWatching for changes. Press Ctrl-C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	return nil
}
