package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealFaceCode/ContextBrain/internal/element"
)

const pySample = `import os
from collections import OrderedDict as OD


class Greeter(Base):
    """Greets people."""

    @staticmethod
    def greet(name: str) -> str:
        """Say hello."""
        return f"hello {name}"


TOP_LEVEL = 1
`

func TestStructuredParserExtractsClassAndMethod(t *testing.T) {
	p := NewStructuredParser()
	elems, err := p.Parse([]byte(pySample), "lib/greet.py", "python")
	require.NoError(t, err)

	byType := map[element.Type][]*element.Element{}
	for _, e := range elems {
		byType[e.Type] = append(byType[e.Type], e)
	}

	require.Len(t, byType[element.TypeModule], 1)
	require.Len(t, byType[element.TypeClass], 1)
	assert.Equal(t, "Greeter", byType[element.TypeClass][0].Name)
	assert.Equal(t, "Base", byType[element.TypeClass][0].Metadata["bases"])

	require.Len(t, byType[element.TypeMethod], 1)
	fn := byType[element.TypeMethod][0]
	assert.Equal(t, "greet", fn.Name)
	assert.Contains(t, fn.Signature, "name: str")
	assert.Equal(t, "Say hello.", fn.Docstring)
	assert.Equal(t, "staticmethod", fn.Metadata["decorators"])
	assert.Equal(t, byType[element.TypeClass][0].ID, fn.ParentID)

	require.Len(t, byType[element.TypeImport], 2)
	require.Len(t, byType[element.TypeVariable], 1)
	assert.Equal(t, "TOP_LEVEL", byType[element.TypeVariable][0].Name)
}

func TestStructuredParserValidatesEveryElement(t *testing.T) {
	p := NewStructuredParser()
	elems, err := p.Parse([]byte(pySample), "lib/greet.py", "python")
	require.NoError(t, err)
	for _, e := range elems {
		assert.NoError(t, e.Validate())
	}
}
