package chunk

import (
	"context"

	"github.com/RealFaceCode/ContextBrain/internal/element"
	"github.com/RealFaceCode/ContextBrain/internal/parser"
)

// MarkdownChunker splits markdown files along heading boundaries (spec
// §4.5), pairing each heading with the section body that follows it.
// Large sections are further split by size. Files with no headings
// fall back to whole-document size splitting.
type MarkdownChunker struct {
	ChunkSizeChars int
	parser         *parser.MarkdownParser
}

// NewMarkdownChunker returns a MarkdownChunker with the default chunk size.
func NewMarkdownChunker() *MarkdownChunker {
	return &MarkdownChunker{
		ChunkSizeChars: DefaultChunkSizeChars,
		parser:         parser.NewMarkdownParser(),
	}
}

// Close releases resources held by the chunker. MarkdownChunker
// currently holds none, but implements Closer for symmetry.
func (c *MarkdownChunker) Close() {}

// Chunk implements Chunker.
func (c *MarkdownChunker) Chunk(ctx context.Context, in *FileInput) ([]*Chunk, []*element.Element, error) {
	elements, err := c.parser.Parse(in.Content, in.Path, in.Language)
	if err != nil {
		return nil, nil, err
	}

	headings := make(map[string]*element.Element)
	for _, e := range elements {
		if e.Type == element.TypeHeading {
			headings[e.ID] = e
		}
	}

	var chunks []*Chunk
	for _, e := range elements {
		if e.Type != element.TypeSection {
			continue
		}
		heading := headings[e.ParentID]
		chunks = append(chunks, c.chunkSection(e, heading, in)...)
	}
	if len(chunks) > 0 {
		return chunks, elements, nil
	}

	// No headings: fall back to the whole document.
	for _, e := range elements {
		if e.Type == element.TypeDocument {
			return c.chunkSection(e, nil, in), elements, nil
		}
	}
	return nil, elements, nil
}

func (c *MarkdownChunker) chunkSection(section, heading *element.Element, in *FileInput) []*Chunk {
	var headingText string
	if heading != nil {
		headingText = heading.Content
	}

	pieces := splitBySize(section.Content, c.ChunkSizeChars)
	if len(pieces) == 0 {
		pieces = []string{section.Content}
	}

	chunks := make([]*Chunk, 0, len(pieces))
	line := section.StartLine
	for i, piece := range pieces {
		endLine := line + countLines(piece) - 1
		chunks = append(chunks, &Chunk{
			ID:          chunkID(section.ID, i, len(pieces)),
			FilePath:    in.Path,
			Content:     joinContext(headingText, piece),
			RawContent:  piece,
			Context:     headingText,
			ContentType: ContentTypeMarkdown,
			Language:    in.Language,
			StartLine:   line,
			EndLine:     endLine,
			Metadata:    elementMetadata(section),
		})
		line = endLine + 1
	}
	return chunks
}
