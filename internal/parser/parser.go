// Package parser extracts function and class/struct counts from source
// code using tree-sitter.
package parser

import (
	"context"
	"fmt"

	"codestats/internal/language"
	"codestats/internal/stats"

	sitter "github.com/smacker/go-tree-sitter"
)

// kindSet groups the AST node kinds counted for one language.
type kindSet struct {
	functions map[string]bool
	classes   map[string]bool
}

// jsFunctionKinds covers both grammar spellings of a function expression.
var jsFunctionKinds = map[string]bool{
	"function_declaration": true,
	"function":             true,
	"function_expression":  true,
	"arrow_function":       true,
	"method_definition":    true,
}

var kindsByLanguage = map[language.Language]kindSet{
	language.Rust: {
		functions: map[string]bool{"function_item": true},
		classes:   map[string]bool{"struct_item": true, "enum_item": true},
	},
	language.Python: {
		functions: map[string]bool{"function_definition": true},
		classes:   map[string]bool{"class_definition": true},
	},
	language.JavaScript: {
		functions: jsFunctionKinds,
		classes:   map[string]bool{"class_declaration": true},
	},
	language.TypeScript: {
		functions: jsFunctionKinds,
		classes:   map[string]bool{"class_declaration": true},
	},
	language.Java: {
		functions: map[string]bool{"method_declaration": true, "constructor_declaration": true},
		classes:   map[string]bool{"class_declaration": true, "interface_declaration": true},
	},
	// Go is handled separately: only type_spec nodes whose type is a
	// struct_type count as classes.
	language.Go: {
		functions: map[string]bool{"function_declaration": true, "method_declaration": true},
		classes:   map[string]bool{},
	},
}

// Counter caches one tree-sitter parser per language. A Counter is not
// safe for concurrent use; each analysis worker owns its own.
type Counter struct {
	parsers map[language.Language]*sitter.Parser
}

// NewCounter creates a Counter with an empty parser cache.
func NewCounter() *Counter {
	return &Counter{parsers: make(map[language.Language]*sitter.Parser)}
}

// Close releases all cached parsers.
func (c *Counter) Close() {
	for _, p := range c.parsers {
		p.Close()
	}
	c.parsers = make(map[language.Language]*sitter.Parser)
}

// Count parses src as the given language and counts function and
// class/struct declarations across the whole tree, including nested
// declarations. Empty input yields zero counts.
func (c *Counter) Count(ctx context.Context, lang language.Language, src []byte) (stats.Counts, error) {
	p, err := c.parser(lang)
	if err != nil {
		return stats.Counts{}, err
	}

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return stats.Counts{}, fmt.Errorf("parse %s source: %w", lang, err)
	}
	defer tree.Close()

	var counts stats.Counts
	countNodes(tree.RootNode(), lang, &counts)
	return counts, nil
}

func (c *Counter) parser(lang language.Language) (*sitter.Parser, error) {
	if p, ok := c.parsers[lang]; ok {
		return p, nil
	}
	grammar := lang.Grammar()
	if grammar == nil {
		return nil, fmt.Errorf("no grammar for language %q", lang)
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	c.parsers[lang] = p
	return p, nil
}

// countNodes walks the AST depth-first and tallies matching node kinds.
func countNodes(node *sitter.Node, lang language.Language, counts *stats.Counts) {
	kinds := kindsByLanguage[lang]
	kind := node.Type()

	switch {
	case kinds.functions[kind]:
		counts.Functions++
	case kinds.classes[kind]:
		counts.Classes++
	case lang == language.Go && kind == "type_spec":
		// A type_spec covers structs, interfaces, aliases and named
		// types; only struct types count.
		if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Type() == "struct_type" {
			counts.Classes++
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		countNodes(node.Child(i), lang, counts)
	}
}
