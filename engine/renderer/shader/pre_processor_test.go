package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestPreProcessorIfdef(t *testing.T) {
	source := "a\n//#ifdef LIT\nb\n//#endif\nc"

	p := NewPreProcessor()

	out, err := p.Process(source, map[string]*string{"LIT": nil})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc", out)

	out, err = p.Process(source, nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nc", out)
}

func TestPreProcessorElse(t *testing.T) {
	source := "//#ifdef LIT\nlit\n//#else\nunlit\n//#endif"

	p := NewPreProcessor()

	out, err := p.Process(source, map[string]*string{"LIT": nil})
	require.NoError(t, err)
	assert.Equal(t, "lit", out)

	out, err = p.Process(source, nil)
	require.NoError(t, err)
	assert.Equal(t, "unlit", out)
}

func TestPreProcessorIfndef(t *testing.T) {
	source := "//#ifndef LIT\nfallback\n//#endif"

	p := NewPreProcessor()

	out, err := p.Process(source, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)

	out, err = p.Process(source, map[string]*string{"LIT": nil})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestPreProcessorNesting(t *testing.T) {
	source := "//#ifdef A\na\n//#ifdef B\nab\n//#else\na-only\n//#endif\n//#endif"

	p := NewPreProcessor()

	out, err := p.Process(source, map[string]*string{"A": nil, "B": nil})
	require.NoError(t, err)
	assert.Equal(t, "a\nab", out)

	out, err = p.Process(source, map[string]*string{"A": nil})
	require.NoError(t, err)
	assert.Equal(t, "a\na-only", out)

	// inner blocks of a dropped outer block never emit
	out, err = p.Process(source, map[string]*string{"B": nil})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestPreProcessorSubstitution(t *testing.T) {
	p := NewPreProcessor()

	out, err := p.Process("const N = ${COUNT};", map[string]*string{"COUNT": strptr("64")})
	require.NoError(t, err)
	assert.Equal(t, "const N = 64;", out)

	// a nil definition substitutes as the empty string
	out, err = p.Process("x${EMPTY}y", map[string]*string{"EMPTY": nil})
	require.NoError(t, err)
	assert.Equal(t, "xy", out)
}

func TestPreProcessorErrors(t *testing.T) {
	p := NewPreProcessor()

	_, err := p.Process("${MISSING}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")

	_, err = p.Process("${BROKEN", map[string]*string{"BROKEN": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")

	_, err = p.Process("//#ifdef A\nx", map[string]*string{"A": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endif")

	_, err = p.Process("//#endif", nil)
	require.Error(t, err)

	_, err = p.Process("//#else", nil)
	require.Error(t, err)
}
