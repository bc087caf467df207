package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/RealFaceCode/ContextBrain/internal/element"
)

// StructuredParser performs a full syntactic parse via tree-sitter. It
// is wired for Python-like languages (spec §4.3): `module` for the
// whole file, `class` for type definitions (base list in metadata),
// `function`/`method` for callables (parameters/return in signature,
// decorators in metadata, docstring extracted), `variable` for
// top-level assignments, `import` per imported symbol. Parent/child
// links follow lexical nesting.
type StructuredParser struct{}

// NewStructuredParser returns a Structured Parser.
func NewStructuredParser() *StructuredParser {
	return &StructuredParser{}
}

func (p *StructuredParser) Parse(content []byte, filePath, language string) ([]*element.Element, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(python.GetLanguage())

	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("structured parse %s: %w", filePath, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("structured parse %s: nil tree", filePath)
	}
	root := tree.RootNode()

	path := element.NormalizePath(filePath)
	counters := element.NewIdentityCounters()

	moduleID := counters.NextID(path, element.TypeModule, path, 1)
	modElem := &element.Element{
		ID:        moduleID,
		Type:      element.TypeModule,
		Name:      path,
		FilePath:  path,
		StartLine: 1,
		EndLine:   int(root.EndPoint().Row) + 1,
		Content:   string(content),
		Language:  language,
	}
	elements := []*element.Element{modElem}

	s := &structuredState{
		source:   content,
		path:     path,
		language: language,
		counters: counters,
	}
	s.walkBody(root, moduleID, &elements)

	return elements, nil
}

type structuredState struct {
	source   []byte
	path     string
	language string
	counters *element.IdentityCounters
}

func (s *structuredState) walkBody(n *sitter.Node, parentID string, out *[]*element.Element) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		s.visit(child, parentID, out)
	}
}

func (s *structuredState) visit(n *sitter.Node, parentID string, out *[]*element.Element) {
	switch n.Type() {
	case "decorated_definition":
		decorators := s.extractDecorators(n)
		inner := n.ChildByFieldName("definition")
		if inner == nil {
			// fall back to scanning children for the wrapped definition
			for i := 0; i < int(n.ChildCount()); i++ {
				c := n.Child(i)
				if c != nil && (c.Type() == "function_definition" || c.Type() == "class_definition") {
					inner = c
					break
				}
			}
		}
		if inner != nil {
			s.visitDefinition(inner, parentID, decorators, out)
		}

	case "function_definition", "class_definition":
		s.visitDefinition(n, parentID, nil, out)

	case "import_statement", "import_from_statement":
		s.visitImport(n, parentID, out)

	case "expression_statement":
		s.visitTopLevelAssignment(n, parentID, out)

	default:
		// Recurse through wrapper nodes (e.g. "block", "if_statement" at
		// module scope) so nested definitions are still found.
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c != nil {
				s.visit(c, parentID, out)
			}
		}
	}
}

func (s *structuredState) visitDefinition(n *sitter.Node, parentID string, decorators []string, out *[]*element.Element) {
	nameNode := n.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(s.source)
	}
	if name == "" {
		return
	}

	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1

	var typ element.Type
	metadata := map[string]string{}
	var signature string

	switch n.Type() {
	case "class_definition":
		typ = element.TypeClass
		if super := n.ChildByFieldName("superclasses"); super != nil {
			bases := super.Content(s.source)
			metadata["bases"] = strings.Trim(bases, "()")
		}
		signature = s.firstLine(n)

	case "function_definition":
		if parentID != "" && s.isInsideClass(n) {
			typ = element.TypeMethod
		} else {
			typ = element.TypeFunction
		}
		params := ""
		if p := n.ChildByFieldName("parameters"); p != nil {
			params = p.Content(s.source)
		}
		retType := ""
		if rt := n.ChildByFieldName("return_type"); rt != nil {
			retType = " -> " + rt.Content(s.source)
		}
		signature = fmt.Sprintf("def %s%s%s:", name, params, retType)
	}

	if len(decorators) > 0 {
		metadata["decorators"] = strings.Join(decorators, ",")
	}
	docstring := s.extractDocstring(n)

	id := s.counters.NextID(s.path, typ, name, startLine)
	el := &element.Element{
		ID:        id,
		Type:      typ,
		Name:      name,
		FilePath:  s.path,
		StartLine: startLine,
		EndLine:   endLine,
		Content:   n.Content(s.source),
		Language:  s.language,
		ParentID:  parentID,
		Signature: signature,
		Docstring: docstring,
		Metadata:  metadata,
	}
	*out = append(*out, el)

	if body := n.ChildByFieldName("body"); body != nil {
		s.walkBody(body, id, out)
	}
}

func (s *structuredState) isInsideClass(n *sitter.Node) bool {
	parent := n.Parent()
	for parent != nil {
		if parent.Type() == "class_definition" {
			return true
		}
		if parent.Type() == "function_definition" {
			return false
		}
		parent = parent.Parent()
	}
	return false
}

func (s *structuredState) visitImport(n *sitter.Node, parentID string, out *[]*element.Element) {
	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1
	text := n.Content(s.source)

	module := ""
	var symbols []string

	if n.Type() == "import_from_statement" {
		if mod := n.ChildByFieldName("module_name"); mod != nil {
			module = mod.Content(s.source)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch c.Type() {
			case "dotted_name":
				if c != n.ChildByFieldName("module_name") {
					symbols = append(symbols, c.Content(s.source))
				}
			case "aliased_import":
				if name := c.ChildByFieldName("name"); name != nil {
					symbols = append(symbols, name.Content(s.source))
				}
			case "wildcard_import":
				symbols = append(symbols, "*")
			}
		}
	} else {
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch c.Type() {
			case "dotted_name":
				symbols = append(symbols, c.Content(s.source))
			case "aliased_import":
				if name := c.ChildByFieldName("name"); name != nil {
					symbols = append(symbols, name.Content(s.source))
				}
			}
		}
	}

	if len(symbols) == 0 {
		symbols = []string{module}
	}

	for _, sym := range symbols {
		id := s.counters.NextID(s.path, element.TypeImport, sym, startLine)
		*out = append(*out, &element.Element{
			ID:        id,
			Type:      element.TypeImport,
			Name:      sym,
			FilePath:  s.path,
			StartLine: startLine,
			EndLine:   endLine,
			Content:   text,
			Language:  s.language,
			ParentID:  parentID,
			Metadata:  map[string]string{"module": module, "symbol": sym},
		})
	}
}

func (s *structuredState) visitTopLevelAssignment(n *sitter.Node, parentID string, out *[]*element.Element) {
	if n.ChildCount() == 0 {
		return
	}
	assign := n.Child(0)
	if assign == nil || assign.Type() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := left.Content(s.source)
	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1

	id := s.counters.NextID(s.path, element.TypeVariable, name, startLine)
	*out = append(*out, &element.Element{
		ID:        id,
		Type:      element.TypeVariable,
		Name:      name,
		FilePath:  s.path,
		StartLine: startLine,
		EndLine:   endLine,
		Content:   n.Content(s.source),
		Language:  s.language,
		ParentID:  parentID,
	})
}

func (s *structuredState) extractDecorators(n *sitter.Node) []string {
	var decorators []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.Type() == "decorator" {
			decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(c.Content(s.source), "@")))
		}
	}
	return decorators
}

// extractDocstring returns the string literal of the first statement
// in the definition's body, if any, per Python docstring convention.
func (s *structuredState) extractDocstring(n *sitter.Node) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first == nil || first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	text := str.Content(s.source)
	text = strings.Trim(text, `"'`)
	return strings.TrimSpace(text)
}

func (s *structuredState) firstLine(n *sitter.Node) string {
	content := n.Content(s.source)
	if idx := strings.Index(content, "\n"); idx >= 0 {
		return strings.TrimSpace(content[:idx])
	}
	return strings.TrimSpace(content)
}
