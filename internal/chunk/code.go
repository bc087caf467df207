package chunk

import (
	"context"
	"strings"

	"github.com/RealFaceCode/ContextBrain/internal/element"
	"github.com/RealFaceCode/ContextBrain/internal/parser"
)

// codeElementTypes are the element kinds that become their own chunk.
// Everything else (imports, module/document wrappers) only contributes
// to Context or the whole-file fallback.
var codeElementTypes = map[element.Type]bool{
	element.TypeFunction: true,
	element.TypeMethod:   true,
	element.TypeClass:    true,
	element.TypeVariable: true,
	element.TypeExport:   true,
}

// CodeChunker splits source files into one chunk per top-level
// function, method, class, or other recognised declaration (spec
// §4.5), using the Parser Registry to find element boundaries. Large
// elements are further split by size. Files with no recognised
// declarations fall back to whole-file size splitting.
type CodeChunker struct {
	ChunkSizeChars int
	registry       *parser.Registry
}

// NewCodeChunker returns a CodeChunker with the default chunk size.
func NewCodeChunker() *CodeChunker {
	return &CodeChunker{
		ChunkSizeChars: DefaultChunkSizeChars,
		registry:       parser.NewRegistry(),
	}
}

// Close releases resources held by the chunker. CodeChunker currently
// holds none, but implements Closer for symmetry with chunkers that do.
func (c *CodeChunker) Close() {}

// Chunk implements Chunker.
func (c *CodeChunker) Chunk(ctx context.Context, in *FileInput) ([]*Chunk, []*element.Element, error) {
	elements, err := c.registry.Parse(in.Content, in.Path, in.Language)
	if err != nil {
		return nil, nil, err
	}

	fileContext := importContext(elements)

	var declarations []*element.Element
	for _, e := range elements {
		if codeElementTypes[e.Type] {
			declarations = append(declarations, e)
		}
	}

	if len(declarations) == 0 {
		return c.chunkWholeFile(elements, in, fileContext), elements, nil
	}

	var chunks []*Chunk
	for _, e := range declarations {
		chunks = append(chunks, c.chunkElement(e, fileContext)...)
	}
	return chunks, elements, nil
}

// chunkElement splits one declaration's content into one or more
// Chunks, tracking line offsets across split pieces.
func (c *CodeChunker) chunkElement(e *element.Element, fileContext string) []*Chunk {
	pieces := splitBySize(e.Content, c.ChunkSizeChars)
	if len(pieces) == 0 {
		pieces = []string{e.Content}
	}

	symbol := &Symbol{
		Name:       e.Name,
		Type:       string(e.Type),
		StartLine:  e.StartLine,
		EndLine:    e.EndLine,
		Signature:  e.Signature,
		DocComment: e.Docstring,
	}

	chunks := make([]*Chunk, 0, len(pieces))
	line := e.StartLine
	for i, piece := range pieces {
		endLine := line + countLines(piece) - 1
		chunks = append(chunks, &Chunk{
			ID:          chunkID(e.ID, i, len(pieces)),
			FilePath:    e.FilePath,
			Content:     joinContext(fileContext, piece),
			RawContent:  piece,
			Context:     fileContext,
			ContentType: ContentTypeCode,
			Language:    e.Language,
			StartLine:   line,
			EndLine:     endLine,
			Symbols:     []*Symbol{symbol},
			Metadata:    elementMetadata(e),
		})
		line = endLine + 1
	}
	return chunks
}

// chunkWholeFile handles files where the registry found no individual
// declarations (e.g. a generic-parser file with no detected blocks):
// the whole-file document/module element is split by size directly.
func (c *CodeChunker) chunkWholeFile(elements []*element.Element, in *FileInput, fileContext string) []*Chunk {
	var whole *element.Element
	for _, e := range elements {
		if e.Type == element.TypeModule || e.Type == element.TypeDocument {
			whole = e
			break
		}
	}
	if whole == nil {
		return nil
	}

	pieces := splitBySize(whole.Content, c.ChunkSizeChars)
	chunks := make([]*Chunk, 0, len(pieces))
	line := 1
	for i, piece := range pieces {
		endLine := line + countLines(piece) - 1
		chunks = append(chunks, &Chunk{
			ID:          chunkID(whole.ID, i, len(pieces)),
			FilePath:    in.Path,
			Content:     joinContext(fileContext, piece),
			RawContent:  piece,
			Context:     fileContext,
			ContentType: ContentTypeCode,
			Language:    in.Language,
			StartLine:   line,
			EndLine:     endLine,
			Metadata:    elementMetadata(whole),
		})
		line = endLine + 1
	}
	return chunks
}

// importContext joins the content of every import element into a
// single string used as the Context carried by every chunk in the
// file (spec §4.5: "imports, package decl").
func importContext(elements []*element.Element) string {
	var lines []string
	for _, e := range elements {
		if e.Type == element.TypeImport {
			lines = append(lines, strings.TrimRight(e.Content, "\n"))
		}
	}
	return strings.Join(lines, "\n")
}

func joinContext(context, content string) string {
	if context == "" {
		return content
	}
	return context + "\n\n" + content
}
