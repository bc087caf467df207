// Package parser implements the Parser Registry and its four parsers
// (spec §4.3): Structured (full syntactic parse for Python), Pattern
// (regex-driven for curly-brace languages), Markdown (heading
// hierarchy), and Generic (text fallback). Every parser is pure: it
// takes file content and a path and returns an ordered element stream,
// performing no I/O.
package parser

import "github.com/RealFaceCode/ContextBrain/internal/element"

// Parser extracts structural elements from the content of a single
// file. Implementations must be pure and produce a bounded number of
// elements for bounded input.
type Parser interface {
	Parse(content []byte, filePath string, language string) ([]*element.Element, error)
}

// Registry dispatches a (content, path, language) triple to the parser
// registered for that language, falling back to the generic parser.
type Registry struct {
	structured Parser
	pattern    Parser
	markdown   Parser
	generic    Parser

	structuredLanguages map[string]bool
	patternLanguages    map[string]bool
}

// NewRegistry builds the default registry wired per spec §4.3: Python
// goes to the Structured Parser, curly-brace languages to the Pattern
// Parser, markdown/rst to the Markdown Parser, everything else to the
// Generic Parser.
func NewRegistry() *Registry {
	return &Registry{
		structured: NewStructuredParser(),
		pattern:    NewPatternParser(),
		markdown:   NewMarkdownParser(),
		generic:    NewGenericParser(),
		structuredLanguages: map[string]bool{
			"python": true,
		},
		patternLanguages: map[string]bool{
			"go": true, "javascript": true, "typescript": true, "java": true,
			"kotlin": true, "c": true, "cpp": true, "csharp": true,
			"swift": true, "php": true, "rust": true,
		},
	}
}

// Parse dispatches to the parser registered for language.
func (r *Registry) Parse(content []byte, filePath, language string) ([]*element.Element, error) {
	switch {
	case r.structuredLanguages[language]:
		return r.structured.Parse(content, filePath, language)
	case r.patternLanguages[language]:
		return r.pattern.Parse(content, filePath, language)
	case language == "markdown" || language == "rst":
		return r.markdown.Parse(content, filePath, language)
	default:
		return r.generic.Parse(content, filePath, language)
	}
}
