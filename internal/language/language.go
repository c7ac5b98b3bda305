// Package language maps file extensions to supported languages and their
// tree-sitter grammars.
package language

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies a programming language the analyzer can parse.
// The string value is the display name and the JSON encoding.
type Language string

const (
	Rust       Language = "Rust"
	Go         Language = "Go"
	Python     Language = "Python"
	JavaScript Language = "JavaScript"
	TypeScript Language = "TypeScript"
	Java       Language = "Java"
)

// All returns every supported language.
func All() []Language {
	return []Language{Rust, Go, Python, JavaScript, TypeScript, Java}
}

// byExtension maps a lowercase file extension (without dot) to a language.
var byExtension = map[string]Language{
	"rs":   Rust,
	"go":   Go,
	"py":   Python,
	"js":   JavaScript,
	"ts":   TypeScript,
	"java": Java,
}

// FromPath detects the language of a file from its extension.
// Matching is case-insensitive and uses only the last extension,
// so "app.module.ts" is TypeScript. The second return value is false
// when the extension is missing or unsupported.
func FromPath(path string) (Language, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "", false
	}
	lang, ok := byExtension[ext]
	return lang, ok
}

// Grammar returns the tree-sitter grammar for the language.
func (l Language) Grammar() *sitter.Language {
	switch l {
	case Rust:
		return rust.GetLanguage()
	case Go:
		return golang.GetLanguage()
	case Python:
		return python.GetLanguage()
	case JavaScript:
		return javascript.GetLanguage()
	case TypeScript:
		return typescript.GetLanguage()
	case Java:
		return java.GetLanguage()
	}
	return nil
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}
