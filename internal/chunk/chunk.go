// Package chunk splits parsed elements into size-bounded embedding
// chunks and groups chunks into batches for the Embedder (spec §4.5).
package chunk

import (
	"context"
	"fmt"

	"github.com/RealFaceCode/ContextBrain/internal/element"
)

// DefaultChunkSizeChars is used when a Chunker is constructed with a
// non-positive size.
const DefaultChunkSizeChars = 2000

// ContentType classifies the origin of a Chunk's content.
type ContentType string

const (
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
)

// FileInput is the raw material handed to a Chunker: one file's path,
// bytes, and detected language.
type FileInput struct {
	Path     string
	Content  []byte
	Language string
}

// Symbol records one named structural element folded into a Chunk, for
// structural search over the chunk's symbol table.
type Symbol struct {
	Name       string
	Type       string
	StartLine  int
	EndLine    int
	Signature  string
	DocComment string
}

// Chunk is one embeddable unit handed to the Embedder and stored
// alongside its source file (spec §4.5).
type Chunk struct {
	// ID follows the identity rule in spec §4.5: for an element that
	// produces a single chunk, ID is the element's own id verbatim; for
	// an element split into N>1 pieces, ID is "element_id#0".."element_id#N-1".
	// Metadata["element_id"] always carries the owning element's id, so
	// every piece of a split element can be grouped/deduped by it.
	ID string

	FilePath string

	// Content is RawContent prefixed with Context, the form handed to
	// the embedder and shown in search results.
	Content string

	// RawContent is just the chunked symbol text, with no surrounding
	// context.
	RawContent string

	// Context carries the file's imports/package declaration for code
	// chunks. Empty for markdown.
	Context string

	ContentType ContentType
	Language    string
	StartLine   int
	EndLine     int
	Symbols     []*Symbol
	Metadata    map[string]string
}

// Chunker splits one file's content into Chunks (spec §4.5), also
// returning the full element graph the parser produced so callers can
// persist it to the Structured Index independently of which elements
// became chunks. Every implementation must be safe to reuse across
// files and must not mutate FileInput.
type Chunker interface {
	Chunk(ctx context.Context, in *FileInput) ([]*Chunk, []*element.Element, error)
}

// chunkID computes the record id for one piece of an element's
// chunked content, per spec §4.5: the element id verbatim when the
// element produced a single piece, otherwise "element_id#ordinal".
func chunkID(elementID string, ordinal, total int) string {
	if total <= 1 {
		return elementID
	}
	return fmt.Sprintf("%s#%d", elementID, ordinal)
}

// elementMetadata returns the chunk metadata map every piece of e must
// carry, so pieces of a split element can be deduped/grouped by
// metadata.element_id (spec §4.5 step 5, §8 invariants 3-4).
func elementMetadata(e *element.Element) map[string]string {
	return map[string]string{"element_id": e.ID}
}

// splitBySize splits content into pieces of at most size characters,
// preferring to break at the last line boundary that fits within the
// budget. When no line break is found within the budget, it breaks at
// exactly size characters.
func splitBySize(content string, size int) []string {
	if content == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSizeChars
	}
	runes := []rune(content)
	if len(runes) <= size {
		return []string{content}
	}

	var pieces []string
	for len(runes) > 0 {
		if len(runes) <= size {
			pieces = append(pieces, string(runes))
			break
		}
		window := runes[:size]
		cut := size
		if idx := lastIndexRune(window, '\n'); idx > 0 {
			cut = idx + 1
		}
		pieces = append(pieces, string(runes[:cut]))
		runes = runes[cut:]
	}
	return pieces
}

func lastIndexRune(rs []rune, target rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == target {
			return i
		}
	}
	return -1
}

// countLines returns the number of lines in s, counting the first
// partial line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
