package parser

import (
	"regexp"
	"strings"

	"github.com/RealFaceCode/ContextBrain/internal/element"
)

// GenericParser is the fallback for languages with no dedicated
// parser: one `document` element spanning the whole file, plus `block`
// elements for heuristically detected comment/doc blocks (spec §4.3).
type GenericParser struct{}

// NewGenericParser returns a Generic Parser.
func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

var (
	lineCommentPrefixes = []string{"//", "#", "--", ";"}
	blockCommentOpeners = regexp.MustCompile(`/\*|"""|'''`)
)

func (p *GenericParser) Parse(content []byte, filePath, language string) ([]*element.Element, error) {
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

	blockStart := -1
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		isComment := isLineComment(trimmed) || blockCommentOpeners.MatchString(trimmed)
		if isComment {
			if blockStart == -1 {
				blockStart = i
			}
			continue
		}
		if blockStart != -1 {
			elements = append(elements, makeBlock(counters, path, language, docID, lines, blockStart, i-1))
			blockStart = -1
		}
	}
	if blockStart != -1 {
		elements = append(elements, makeBlock(counters, path, language, docID, lines, blockStart, len(lines)-1))
	}

	return elements, nil
}

func isLineComment(line string) bool {
	for _, p := range lineCommentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func makeBlock(counters *element.IdentityCounters, path, language, parentID string, lines []string, start, end int) *element.Element {
	startLine := start + 1
	name := strings.TrimSpace(lines[start])
	if len(name) > 40 {
		name = name[:40]
	}
	id := counters.NextID(path, element.TypeBlock, name, startLine)
	return &element.Element{
		ID:        id,
		Type:      element.TypeBlock,
		Name:      name,
		FilePath:  path,
		StartLine: startLine,
		EndLine:   end + 1,
		Content:   strings.Join(lines[start:end+1], "\n"),
		Language:  language,
		ParentID:  parentID,
	}
}
