// Package stats holds the result types produced by code analysis and the
// aggregation logic for directory-wide runs.
package stats

import "codestats/internal/language"

// Counts is the pair of counters extracted from a single parse.
type Counts struct {
	// Functions counts function declarations, including methods,
	// constructors and arrow functions.
	Functions int `json:"function_count"`
	// Classes counts class and struct declarations. Depending on the
	// language this includes enums and interfaces.
	Classes int `json:"class_struct_count"`
}

// FileStats is the analysis result for one source file.
type FileStats struct {
	Path     string            `json:"path"`
	Language language.Language `json:"language"`
	Counts   Counts            `json:"stats"`
}

// LanguageStats accumulates results for all files of one language.
type LanguageStats struct {
	FileCount int `json:"file_count"`
	Functions int `json:"function_count"`
	Classes   int `json:"class_struct_count"`
}

// DirectoryStats aggregates per-file results across a directory tree.
type DirectoryStats struct {
	Files      []FileStats                         `json:"files"`
	ByLanguage map[language.Language]LanguageStats `json:"total_by_language"`
	Totals     Counts                              `json:"total_stats"`
}

// NewDirectoryStats returns an empty aggregation.
func NewDirectoryStats() *DirectoryStats {
	return &DirectoryStats{
		Files:      make([]FileStats, 0),
		ByLanguage: make(map[language.Language]LanguageStats),
	}
}

// AddFile folds one file result into the aggregation: overall totals,
// the per-language bucket, and the file list.
func (d *DirectoryStats) AddFile(fs FileStats) {
	d.Totals.Functions += fs.Counts.Functions
	d.Totals.Classes += fs.Counts.Classes

	lang := d.ByLanguage[fs.Language]
	lang.FileCount++
	lang.Functions += fs.Counts.Functions
	lang.Classes += fs.Counts.Classes
	d.ByLanguage[fs.Language] = lang

	d.Files = append(d.Files, fs)
}

// TotalFiles returns the number of analyzed files.
func (d *DirectoryStats) TotalFiles() int {
	return len(d.Files)
}
