package kicadsexp

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNested(t *testing.T) {
	exprs, err := ParseString(`(kicad_sch (version 20231120) (label "A B" (at 1.27 2.54 0)))`)
	require.NoError(t, err)
	require.Len(t, exprs, 1)

	root, ok := exprs[0].(*List)
	require.True(t, ok)
	assert.Equal(t, 3, root.Len())
	assert.Equal(t, Symbol("kicad_sch"), root.Head())

	label := root.Get(2).(*List)
	assert.Equal(t, Symbol("A B"), label.Get(1))
	assert.Equal(t, `(label A B (at 1.27 2.54 0))`, label.String())
}

func TestParseEscapes(t *testing.T) {
	exprs, err := ParseString(`("a\"b" "c""d" "x\ny")`)
	require.NoError(t, err)

	l := exprs[0].(*List)
	assert.Equal(t, Symbol(`a"b`), l.Get(0))
	assert.Equal(t, Symbol(`c"d`), l.Get(1))
	assert.Equal(t, Symbol("x\ny"), l.Get(2))
}

func TestHashIsNotAComment(t *testing.T) {
	exprs, err := ParseString(`(property Reference #PWR01)`)
	require.NoError(t, err)
	assert.Equal(t, Symbol("#PWR01"), exprs[0].(*List).Get(2))
}

func TestParseErrorsCarryLine(t *testing.T) {
	_, err := Parse(strings.NewReader("(a\n(b\n)"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = ParseString("(a)\n)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseEmptyInput(t *testing.T) {
	exprs, err := ParseString("  \n\t")
	require.NoError(t, err)
	assert.Empty(t, exprs)
}

func TestNextStreamsTopLevelForms(t *testing.T) {
	p := NewParser(strings.NewReader("(a 1)\n; note\nbare (b (c))\n"))

	first, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "(a 1)", first.String())

	second, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, Symbol("bare"), second)

	third, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "(b (c))", third.String())

	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNestingLimit(t *testing.T) {
	p := NewParser(strings.NewReader("(a\n(b (c (d))))"))
	p.SetMaxDepth(3)
	_, err := p.Next()
	require.ErrorIs(t, err, ErrTooDeep)
	assert.Contains(t, err.Error(), "line 2")

	p = NewParser(strings.NewReader("(a (b (c)))"))
	p.SetMaxDepth(3)
	expr, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "(a (b (c)))", expr.String())
}
