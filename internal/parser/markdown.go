package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RealFaceCode/ContextBrain/internal/element"
)

// MarkdownParser recognises ATX and Setext headings (spec §4.3). Each
// heading becomes a `heading` element with metadata.level ∈ {1..6}; a
// companion `section` element captures the content up to the next
// heading of level <= the current one, or end-of-file. Inline markup
// is stripped from the heading name; the original text is retained in
// metadata.raw_heading. Parent/child links mirror the heading tree.
type MarkdownParser struct{}

// NewMarkdownParser returns a Markdown Parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

var (
	atxHeading    = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	setextH1      = regexp.MustCompile(`^=+\s*$`)
	setextH2      = regexp.MustCompile(`^-+\s*$`)
	inlineMarkup  = regexp.MustCompile("(\\*\\*|__|\\*|_|`)")
	inlineLinkRef = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

type heading struct {
	level     int
	raw       string
	name      string
	line      int // 1-based
	bodyStart int // line the section body starts on
}

func (p *MarkdownParser) Parse(content []byte, filePath, language string) ([]*element.Element, error) {
	path := element.NormalizePath(filePath)
	lines := splitLines(string(content))
	counters := element.NewIdentityCounters()

	docID := counters.NextID(path, element.TypeDocument, path, 1)
	elements := []*element.Element{{
		ID:        docID,
		Type:      element.TypeDocument,
		Name:      path,
		FilePath:  path,
		StartLine: 1,
		EndLine:   len(lines),
		Content:   string(content),
		Language:  language,
	}}

	headings := collectHeadings(lines)
	if len(headings) == 0 {
		return elements, nil
	}

	// stack of (level, id) tracks the nearest ancestor heading for
	// parent/child linking (H3 under nearest H2 under nearest H1).
	type stackEntry struct {
		level int
		id    string
	}
	var stack []stackEntry

	for idx, h := range headings {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		parentID := docID
		if len(stack) > 0 {
			parentID = stack[len(stack)-1].id
		}

		headID := counters.NextID(path, element.TypeHeading, h.name, h.line)
		elements = append(elements, &element.Element{
			ID:        headID,
			Type:      element.TypeHeading,
			Name:      h.name,
			FilePath:  path,
			StartLine: h.line,
			EndLine:   h.line,
			Content:   h.raw,
			Language:  language,
			ParentID:  parentID,
			Metadata: map[string]string{
				"level":       strconv.Itoa(h.level),
				"raw_heading": h.raw,
			},
		})
		stack = append(stack, stackEntry{level: h.level, id: headID})

		endLine := len(lines)
		for j := idx + 1; j < len(headings); j++ {
			if headings[j].level <= h.level {
				endLine = headings[j].line - 1
				break
			}
		}
		startLine := h.bodyStart
		if startLine > endLine {
			continue
		}
		body := strings.Join(lines[startLine-1:endLine], "\n")
		sectionID := counters.NextID(path, element.TypeSection, h.name, startLine)
		elements = append(elements, &element.Element{
			ID:        sectionID,
			Type:      element.TypeSection,
			Name:      h.name,
			FilePath:  path,
			StartLine: startLine,
			EndLine:   endLine,
			Content:   body,
			Language:  language,
			ParentID:  headID,
		})
	}

	return elements, nil
}

func collectHeadings(lines []string) []heading {
	var headings []heading
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := atxHeading.FindStringSubmatch(line); m != nil {
			headings = append(headings, heading{
				level:     len(m[1]),
				raw:       strings.TrimSpace(line),
				name:      stripInlineMarkup(m[2]),
				line:      i + 1,
				bodyStart: i + 2,
			})
			continue
		}
		// Setext: a non-blank line followed by a line of all = or all -
		if i+1 < len(lines) && strings.TrimSpace(line) != "" {
			next := lines[i+1]
			if setextH1.MatchString(next) {
				headings = append(headings, heading{
					level: 1, raw: strings.TrimSpace(line), name: stripInlineMarkup(line),
					line: i + 1, bodyStart: i + 3,
				})
				i++
				continue
			}
			if setextH2.MatchString(next) {
				headings = append(headings, heading{
					level: 2, raw: strings.TrimSpace(line), name: stripInlineMarkup(line),
					line: i + 1, bodyStart: i + 3,
				})
				i++
				continue
			}
		}
	}
	return headings
}

func stripInlineMarkup(s string) string {
	s = inlineLinkRef.ReplaceAllString(s, "$1")
	s = inlineMarkup.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

