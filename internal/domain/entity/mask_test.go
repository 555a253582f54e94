package entity

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask_SetAtCount(t *testing.T) {
	m := NewMask(4, 3)
	require.True(t, m.Empty())

	m.Set(1, 1, true)
	m.Set(3, 2, true)
	m.Set(10, 10, true) // вне маски игнорируется

	require.True(t, m.At(1, 1))
	require.False(t, m.At(0, 0))
	require.False(t, m.At(-1, 0))
	require.Equal(t, 2, m.Count())
}

func TestMask_AndAndNot(t *testing.T) {
	a := NewMask(2, 1)
	b := NewMask(2, 1)
	a.Set(0, 0, true)
	a.Set(1, 0, true)
	b.Set(1, 0, true)

	require.Equal(t, 1, a.And(b).Count())
	require.True(t, a.And(b).At(1, 0))

	diff := a.AndNot(b)
	require.True(t, diff.At(0, 0))
	require.False(t, diff.At(1, 0))
	require.Equal(t, 2, a.Count(), "исходная маска не меняется")
}

func TestMaskFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)

	m := MaskFromImage(img, 127)
	require.True(t, m.At(0, 0))
	require.False(t, m.At(1, 0))

	g := m.Gray()
	require.Equal(t, MaskOn, g.GrayAt(0, 0).Y)
	require.True(t, MaskFromImage(g, 127).At(0, 0))
}
