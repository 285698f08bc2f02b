package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat(t *testing.T) {
	out := Concat(FromString("0110"), FromString("1001"))
	assert.Equal(t, "01101001", out.String())
	assert.Equal(t, 8, out.Size())
}

func TestSubsplitOfIsOrderFree(t *testing.T) {
	a, b := FromString("0110"), FromString("0001")
	ab, ba := SubsplitOf(a, b), SubsplitOf(b, a)
	assert.True(t, ab.Equal(ba))
	// The lexicographically smaller chunk comes first.
	assert.Equal(t, "00010110", ab.String())
}

func TestSubsplitOfOverlapPanics(t *testing.T) {
	assert.Panics(t, func() { SubsplitOf(FromString("0110"), FromString("0010")) })
}

func TestParentSubsplitOrderAndComplement(t *testing.T) {
	sister, focal := FromString("1000"), FromString("0110")
	assert.Equal(t, "10000110", ParentSubsplit(sister, false, focal, false).String())
	// Chunk order is semantic for parents: swapping sister and focal is a
	// different key.
	assert.Equal(t, "01101000", ParentSubsplit(focal, false, sister, false).String())
	// Complement flags complement within the taxon set.
	assert.Equal(t, "01110110", ParentSubsplit(sister, true, focal, false).String())
	assert.Equal(t, "10001001", ParentSubsplit(sister, false, focal, true).String())
}

func TestChunkAndRotate(t *testing.T) {
	ss := FromString("10000110")
	assert.Equal(t, "1000", ss.Chunk(0, 4).String())
	assert.Equal(t, "0110", ss.Chunk(1, 4).String())
	assert.Equal(t, "01101000", ss.Rotate().String())
	assert.True(t, ss.Rotate().Rotate().Equal(ss))

	assert.Panics(t, func() { ss.Chunk(2, 4) })
	assert.Panics(t, func() { ss.Chunk(0, 3) })
	assert.Panics(t, func() { FromString("01101").Rotate() })
}

func TestNewPCSS(t *testing.T) {
	parent := FromString("10000111") // sister {0}, focal {1,2,3}
	child := FromString("0011")

	pcss, err := NewPCSS(parent, child)
	require.NoError(t, err)
	assert.Equal(t, "1000|0111|0011", pcss.String())

	back, err := FromKey(pcss.Key())
	require.NoError(t, err)
	assert.Equal(t, "100001110011", back.String())
}

func TestNewPCSSValidation(t *testing.T) {
	parent := FromString("10000111")

	_, err := NewPCSS(parent, FromString("00111")) // size mismatch
	assert.Error(t, err)
	_, err = NewPCSS(parent, FromString("0000")) // empty child
	assert.Error(t, err)
	_, err = NewPCSS(parent, FromString("1001")) // outside focal clade
	assert.Error(t, err)
	_, err = NewPCSS(parent, FromString("0111")) // no proper refinement
	assert.Error(t, err)
}
