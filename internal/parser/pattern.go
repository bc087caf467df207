package parser

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/RealFaceCode/ContextBrain/internal/element"
)

// PatternParser is a regex-driven extractor for curly-brace languages
// (spec §4.3). It recognises top-level function, class, import, export
// and variable declarations. Bodies are delimited by matching braces
// where recoverable; elements inside unbalanced braces are skipped
// rather than mis-bracketed.
type PatternParser struct{}

// NewPatternParser returns a Pattern Parser.
func NewPatternParser() *PatternParser {
	return &PatternParser{}
}

var (
	reFunction  = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(`)
	reArrowFunc = regexp.MustCompile(`^\s*(?:export\s+)?const\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?\([^)]*\)\s*(?::\s*[\w<>\[\]|, ]+)?\s*=>`)
	reClass         = regexp.MustCompile(`^\s*(?:export\s+)?class\s+([A-Za-z_$][\w$]*)(?:\s+extends\s+([A-Za-z_$][\w$.]*))?`)
	reImportFrom    = regexp.MustCompile(`^\s*import\s+.*\sfrom\s+["']([^"']+)["']`)
	reRequire       = regexp.MustCompile(`require\(["']([^"']+)["']\)`)
	reExportDefault = regexp.MustCompile(`^\s*export\s+default\s+(.*)$`)
	reExportBrace   = regexp.MustCompile(`^\s*export\s*\{([^}]*)\}`)
	reTopLevelVar   = regexp.MustCompile(`^\s*(?:export\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)\s*=`)
)

func (p *PatternParser) Parse(content []byte, filePath, language string) ([]*element.Element, error) {
	path := element.NormalizePath(filePath)
	lines := splitLines(string(content))
	counters := element.NewIdentityCounters()

	moduleID := counters.NextID(path, element.TypeModule, path, 1)
	elements := []*element.Element{{
		ID:        moduleID,
		Type:      element.TypeModule,
		Name:      path,
		FilePath:  path,
		StartLine: 1,
		EndLine:   len(lines),
		Content:   string(content),
		Language:  language,
	}}

	depth := 0
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineNo := i + 1

		// Only consider declarations at top level (brace depth 0): the
		// spec restricts function/class recognition to top-level.
		if depth == 0 {
			if m := reFunction.FindStringSubmatch(line); m != nil {
				end := findMatchingBraceEnd(lines, i)
				elements = append(elements, p.makeCallable(counters, path, language, moduleID, m[1], lines, i, end))
				i = end
				continue
			}
			if m := reArrowFunc.FindStringSubmatch(line); m != nil {
				end := findMatchingBraceEnd(lines, i)
				if end < i {
					end = i
				}
				elements = append(elements, p.makeCallable(counters, path, language, moduleID, m[1], lines, i, end))
				i = end
				continue
			}
			if m := reClass.FindStringSubmatch(line); m != nil {
				end := findMatchingBraceEnd(lines, i)
				metadata := map[string]string{}
				if m[2] != "" {
					metadata["extends"] = m[2]
				}
				id := counters.NextID(path, element.TypeClass, m[1], lineNo)
				elements = append(elements, &element.Element{
					ID:        id,
					Type:      element.TypeClass,
					Name:      m[1],
					FilePath:  path,
					StartLine: lineNo,
					EndLine:   end + 1,
					Content:   strings.Join(lines[i:end+1], "\n"),
					Language:  language,
					ParentID:  moduleID,
					Signature: strings.TrimSpace(line),
					Metadata:  metadata,
				})
				i = end
				continue
			}
			if m := reImportFrom.FindStringSubmatch(line); m != nil {
				id := counters.NextID(path, element.TypeImport, m[1], lineNo)
				elements = append(elements, &element.Element{
					ID:        id,
					Type:      element.TypeImport,
					Name:      m[1],
					FilePath:  path,
					StartLine: lineNo,
					EndLine:   lineNo,
					Content:   line,
					Language:  language,
					ParentID:  moduleID,
					Metadata:  map[string]string{"module": m[1]},
				})
				continue
			}
			if m := reRequire.FindStringSubmatch(line); m != nil {
				id := counters.NextID(path, element.TypeImport, m[1], lineNo)
				elements = append(elements, &element.Element{
					ID:        id,
					Type:      element.TypeImport,
					Name:      m[1],
					FilePath:  path,
					StartLine: lineNo,
					EndLine:   lineNo,
					Content:   line,
					Language:  language,
					ParentID:  moduleID,
					Metadata:  map[string]string{"module": m[1]},
				})
				continue
			}
			if m := reExportBrace.FindStringSubmatch(line); m != nil {
				names := strings.Split(m[1], ",")
				for _, raw := range names {
					name := strings.TrimSpace(raw)
					if name == "" {
						continue
					}
					id := counters.NextID(path, element.TypeExport, name, lineNo)
					elements = append(elements, &element.Element{
						ID:        id,
						Type:      element.TypeExport,
						Name:      name,
						FilePath:  path,
						StartLine: lineNo,
						EndLine:   lineNo,
						Content:   line,
						Language:  language,
						ParentID:  moduleID,
					})
				}
				continue
			}
			if m := reExportDefault.FindStringSubmatch(line); m != nil {
				id := counters.NextID(path, element.TypeExport, "default", lineNo)
				elements = append(elements, &element.Element{
					ID:        id,
					Type:      element.TypeExport,
					Name:      "default",
					FilePath:  path,
					StartLine: lineNo,
					EndLine:   lineNo,
					Content:   line,
					Language:  language,
					ParentID:  moduleID,
					Metadata:  map[string]string{"expression": strings.TrimSpace(m[1])},
				})
				continue
			}
			if m := reTopLevelVar.FindStringSubmatch(line); m != nil {
				id := counters.NextID(path, element.TypeVariable, m[2], lineNo)
				elements = append(elements, &element.Element{
					ID:        id,
					Type:      element.TypeVariable,
					Name:      m[2],
					FilePath:  path,
					StartLine: lineNo,
					EndLine:   lineNo,
					Content:   line,
					Language:  language,
					ParentID:  moduleID,
				})
				continue
			}
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
	}

	return elements, nil
}

func (p *PatternParser) makeCallable(counters *element.IdentityCounters, path, language, parentID, name string, lines []string, start, end int) *element.Element {
	if end < start {
		end = start
	}
	lineNo := start + 1
	id := counters.NextID(path, element.TypeFunction, name, lineNo)
	return &element.Element{
		ID:        id,
		Type:      element.TypeFunction,
		Name:      name,
		FilePath:  path,
		StartLine: lineNo,
		EndLine:   end + 1,
		Content:   strings.Join(lines[start:end+1], "\n"),
		Language:  language,
		ParentID:  parentID,
		Signature: strings.TrimSpace(lines[start]),
	}
}

// findMatchingBraceEnd returns the 0-indexed line on which the brace
// opened on lines[start] closes, tracked by running depth. If the
// braces never balance, the declaration is heuristic-bounded to the
// opening line (spec §4.3: "skipped rather than mis-bracketed" for
// elements inside unbalanced braces — here the element itself is kept
// but its body is not over-extended).
func findMatchingBraceEnd(lines []string, start int) int {
	depth := 0
	seenOpen := false
	for i := start; i < len(lines); i++ {
		for _, c := range lines[i] {
			switch c {
			case '{':
				depth++
				seenOpen = true
			case '}':
				depth--
			}
		}
		if seenOpen && depth <= 0 {
			return i
		}
	}
	return start
}

func splitLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
