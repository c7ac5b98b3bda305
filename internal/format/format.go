// Package format renders analysis results as summary, detail or JSON
// output.
package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"codestats/internal/language"
	"codestats/internal/stats"
)

// Format selects an output rendering.
type Format string

const (
	Summary Format = "summary"
	Detail  Format = "detail"
	JSON    Format = "json"
)

// Parse converts a user-supplied format name, case-insensitively.
func Parse(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "summary":
		return Summary, nil
	case "detail":
		return Detail, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("unknown format %q (possible values: summary, detail, json)", s)
}

// Render formats directory statistics in the requested format.
func Render(d *stats.DirectoryStats, f Format) (string, error) {
	switch f {
	case Summary:
		return renderSummary(d), nil
	case Detail:
		return renderDetail(d), nil
	case JSON:
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode stats: %w", err)
		}
		return string(out), nil
	}
	return "", fmt.Errorf("unknown format %q", f)
}

// RenderFile formats the result of a single-file analysis.
func RenderFile(fs stats.FileStats) string {
	return fmt.Sprintf(
		"Analyzing file: %s (Language: %s)\nCode Statistics:\nFunctions: %d\nClasses/Structs: %d",
		fs.Path, fs.Language, fs.Counts.Functions, fs.Counts.Classes)
}

func renderSummary(d *stats.DirectoryStats) string {
	var b strings.Builder
	b.WriteString("Language Summary:\n")

	langs := make([]string, 0, len(d.ByLanguage))
	for lang := range d.ByLanguage {
		langs = append(langs, string(lang))
	}
	sort.Strings(langs)

	for _, lang := range langs {
		ls := d.ByLanguage[language.Language(lang)]
		fmt.Fprintf(&b, "  %-12s %4d functions, %4d structs/classes in %d files\n",
			lang+":", ls.Functions, ls.Classes, ls.FileCount)
	}

	fmt.Fprintf(&b, "\nTotal: %d functions, %d structs/classes in %d files",
		d.Totals.Functions, d.Totals.Classes, d.TotalFiles())
	return b.String()
}

func renderDetail(d *stats.DirectoryStats) string {
	files := make([]stats.FileStats, len(d.Files))
	copy(files, d.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s (%s):\n  Functions: %d\n  Structs/Classes: %d\n\n",
			f.Path, f.Language, f.Counts.Functions, f.Counts.Classes)
	}
	b.WriteString(renderSummary(d))
	return b.String()
}
