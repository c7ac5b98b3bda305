// Package analyzer orchestrates parsing of files and directory trees and
// aggregates the resulting statistics.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"codestats/internal/language"
	"codestats/internal/parser"
	"codestats/internal/stats"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedFile is returned by AnalyzeFile when the file extension
// does not map to a supported language.
var ErrUnsupportedFile = errors.New("unsupported file type")

// DefaultMaxDepth bounds directory traversal when no limit is given.
const DefaultMaxDepth = 100

// Options controls directory traversal and parsing.
type Options struct {
	// MaxDepth limits traversal depth. The root is depth 0, its direct
	// entries are depth 1. Zero means DefaultMaxDepth.
	MaxDepth int
	// FollowLinks enters directories behind symbolic links.
	FollowLinks bool
	// IgnorePatterns skips any path containing one of these substrings.
	IgnorePatterns []string
	// Workers bounds concurrent file parsing. Zero picks a CPU-derived
	// default.
	Workers int
	// Logger receives debug output. Nil means no logging.
	Logger *zap.Logger
}

// DefaultWorkers returns the worker bound used when Options.Workers is
// zero: NumCPU clamped to [4, 20].
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 20 {
		workers = 20
	}
	if workers < 4 {
		workers = 4
	}
	return workers
}

// Analyzer analyzes single files and directory trees.
type Analyzer struct {
	opts    Options
	logger  *zap.Logger
	mu      sync.Mutex
	counter *parser.Counter // serial-use cache for AnalyzeFile
}

// New creates an Analyzer, filling in option defaults.
func New(opts Options) *Analyzer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		opts:    opts,
		logger:  logger,
		counter: parser.NewCounter(),
	}
}

// Close releases cached parsers.
func (a *Analyzer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counter.Close()
}

// AnalyzeFile analyzes a single source file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (stats.FileStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stats.FileStats{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return stats.FileStats{}, fmt.Errorf("%s is not a file", path)
	}

	lang, ok := language.FromPath(path)
	if !ok {
		return stats.FileStats{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return stats.FileStats{}, fmt.Errorf("read %s: %w", path, err)
	}

	a.mu.Lock()
	counts, err := a.counter.Count(ctx, lang, src)
	a.mu.Unlock()
	if err != nil {
		return stats.FileStats{}, err
	}

	a.logger.Debug("analyzed file",
		zap.String("path", path),
		zap.String("language", lang.String()),
		zap.Int("functions", counts.Functions),
		zap.Int("classes", counts.Classes))

	return stats.FileStats{Path: path, Language: lang, Counts: counts}, nil
}

// AnalyzeDirectory walks root and analyzes every supported file with a
// bounded worker pool. Individual file errors do not fail the run; the
// call fails only when errors occurred and no file could be analyzed,
// in which case the first error is returned.
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, root string) (*stats.DirectoryStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, walkErrs := a.collectFiles(root)

	result := stats.NewDirectoryStats()
	var mu sync.Mutex
	fileErrs := make([]error, 0)

	jobs := make(chan string)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < a.opts.Workers; i++ {
		g.Go(func() error {
			counter := parser.NewCounter()
			defer counter.Close()

			for path := range jobs {
				fs, err := analyzeOne(gctx, counter, path)
				mu.Lock()
				if err != nil {
					fileErrs = append(fileErrs, err)
				} else {
					result.AddFile(fs)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for _, path := range files {
			select {
			case jobs <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("directory analysis complete",
		zap.String("root", root),
		zap.Int("files", result.TotalFiles()),
		zap.Int("errors", len(walkErrs)+len(fileErrs)))

	allErrs := append(walkErrs, fileErrs...)
	if len(allErrs) > 0 && result.TotalFiles() == 0 {
		return nil, allErrs[0]
	}
	return result, nil
}

func analyzeOne(ctx context.Context, counter *parser.Counter, path string) (stats.FileStats, error) {
	lang, ok := language.FromPath(path)
	if !ok {
		// collectFiles only yields supported paths
		return stats.FileStats{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return stats.FileStats{}, fmt.Errorf("read %s: %w", path, err)
	}
	counts, err := counter.Count(ctx, lang, src)
	if err != nil {
		return stats.FileStats{}, err
	}
	return stats.FileStats{Path: path, Language: lang, Counts: counts}, nil
}

// collectFiles gathers the supported, non-ignored files under root.
// Traversal errors are returned alongside the file list so the caller
// can apply the errors-only-fatal-when-empty rule.
func (a *Analyzer) collectFiles(root string) ([]string, []error) {
	var files []string
	var errs []error

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("read dir %s: %w", dir, err))
			return
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			entryDepth := depth + 1
			if entryDepth > a.opts.MaxDepth {
				continue
			}
			if a.isIgnored(path) {
				continue
			}

			mode := entry.Type()
			if mode&os.ModeSymlink != 0 {
				info, err := os.Stat(path)
				if err != nil {
					// dangling link, skip
					continue
				}
				if info.IsDir() {
					if a.opts.FollowLinks && entryDepth < a.opts.MaxDepth {
						walk(path, entryDepth)
					}
					continue
				}
				mode = info.Mode()
			}

			if entry.IsDir() {
				if entryDepth < a.opts.MaxDepth {
					walk(path, entryDepth)
				}
				continue
			}
			if !mode.IsRegular() {
				continue
			}
			if _, ok := language.FromPath(path); !ok {
				continue
			}
			files = append(files, path)
		}
	}

	// A root that is itself unreadable or not a directory surfaces as a
	// single traversal error.
	walk(root, 0)
	return files, errs
}

// isIgnored applies plain substring matching against the path.
func (a *Analyzer) isIgnored(path string) bool {
	for _, pattern := range a.opts.IgnorePatterns {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
