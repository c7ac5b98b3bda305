package main

import (
	"context"
	"fmt"
	"os"

	"codestats/internal/analyzer"
	"codestats/internal/config"
	"codestats/internal/format"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	// Analyze flags
	formatFlag  string
	detailFlag  bool
	ignoreFlags []string
	followLinks bool
	maxDepth    int
	workers     int

	// Logger
	logger *zap.Logger
)

// rootCmd analyzes a file or directory tree.
var rootCmd = &cobra.Command{
	Use:   "codestats [path]",
	Short: "Analyze code statistics for functions and classes",
	Long: `codestats statically analyzes source code with tree-sitter and reports
the number of function and class/struct declarations per file and per
language.

Supported languages: Rust, Go, Python, JavaScript, TypeScript, Java.

Examples:
  codestats ./src
  codestats main.go
  codestats ./src --format json --ignore vendor --ignore node_modules`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "summary", "Output format (summary, detail, json)")
	rootCmd.Flags().BoolVarP(&detailFlag, "detail", "d", false, "Show detailed statistics for each file")
	rootCmd.Flags().StringArrayVar(&ignoreFlags, "ignore", nil, "File patterns to ignore (can be used multiple times)")
	rootCmd.Flags().BoolVar(&followLinks, "follow-links", false, "Follow symbolic links")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", analyzer.DefaultMaxDepth, "Maximum depth for directory traversal")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent file workers (0 = auto)")

	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runAnalyze analyzes the target path and prints the result.
func runAnalyze(cmd *cobra.Command, args []string) error {
	target := args[0]

	opts, outFormat, err := resolveOptions(cmd, target)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := analyzer.New(opts)
	defer a.Close()

	if !info.IsDir() {
		fs, err := a.AnalyzeFile(ctx, target)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), format.RenderFile(fs))
		return nil
	}

	result, err := a.AnalyzeDirectory(ctx, target)
	if err != nil {
		return err
	}

	out, err := format.Render(result, outFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// resolveOptions merges project config with command-line flags. Flags
// that were explicitly set win over config values.
func resolveOptions(cmd *cobra.Command, target string) (analyzer.Options, format.Format, error) {
	cfg, err := config.LoadForRoot(target)
	if err != nil {
		return analyzer.Options{}, "", err
	}

	name := formatFlag
	if cfg.Format != "" && !flagChanged(cmd, "format") {
		name = cfg.Format
	}
	if detailFlag {
		name = string(format.Detail)
	}
	outFormat, err := format.Parse(name)
	if err != nil {
		return analyzer.Options{}, "", err
	}

	depth := maxDepth
	if cfg.MaxDepth > 0 && !flagChanged(cmd, "max-depth") {
		depth = cfg.MaxDepth
	}
	workerCount := workers
	if workerCount == 0 && cfg.Workers > 0 {
		workerCount = cfg.Workers
	}

	opts := analyzer.Options{
		MaxDepth:       depth,
		FollowLinks:    followLinks || cfg.FollowLinks,
		IgnorePatterns: append(append([]string{}, cfg.Ignore...), ignoreFlags...),
		Workers:        workerCount,
		Logger:         logger,
	}
	return opts, outFormat, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}
