package wbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClearAndConstStart(t *testing.T) {
	b := New(8)
	b.Clear(0, 8)
	assert.Equal(t, 0, b.GetConstStart())
	for _, v := range b.GetContents() {
		assert.Equal(t, 0.0, v)
	}
}

func TestMixAccumulates(t *testing.T) {
	dst := New(4)
	src := New(4)
	dc := dst.GetContentsMut()
	sc := src.GetContentsMut()
	for i := range dc {
		dc[i] = 1.0
		sc[i] = 2.0
	}
	Mix(dst, src, 0, 4)
	for _, v := range dst.GetContents() {
		assert.Equal(t, 3.0, v)
	}
}

func TestIsValidNilSafe(t *testing.T) {
	assert.False(t, IsValid(nil))
	b := New(2)
	assert.False(t, IsValid(b))
	b.SetValid(true)
	assert.True(t, IsValid(b))
}

func TestConstStartInvariant(t *testing.T) {
	b := New(16)
	b.FillConst(5.0)
	k := b.GetConstStart()
	c := b.GetContents()
	for i := k; i < len(c); i++ {
		assert.Equal(t, c[k], c[i])
	}
}

func TestExtendedGuardBand(t *testing.T) {
	b := New(4)
	c := b.GetContentsMut()
	c[0] = 9
	// one sample before index 0 is readable and zero by default
	assert.Equal(t, 0.0, b.AtExtended(-1))
	assert.Equal(t, 9.0, b.AtExtended(0))
}
