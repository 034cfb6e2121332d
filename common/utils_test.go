package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, "", Coalesce[string]())
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))

	data := []uint32{0x04030201, 0x08070605}
	raw := SliceToBytes(data)
	require.Len(t, raw, 8)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, raw)
}

func TestStructToBytes(t *testing.T) {
	v := struct {
		A uint32
		B uint32
	}{A: 1, B: 2}

	raw := StructToBytes(&v)
	require.Len(t, raw, 8)
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, byte(2), raw[4])
}
