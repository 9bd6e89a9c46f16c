package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_AllocFree(t *testing.T) {
	p := New[int](4)
	assert.Equal(t, 4, p.Cap())
	assert.Equal(t, 0, p.Len())

	r1, err := p.Alloc(10)
	assert.NoError(t, err)
	r2, err := p.Alloc(20)
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 10, *p.Get(r1))
	assert.Equal(t, 20, *p.Get(r2))

	p.Free(r1)
	assert.Equal(t, 1, p.Len())

	r3, err := p.Alloc(30)
	assert.NoError(t, err)
	assert.Equal(t, r1, r3, "freed slot should be reused")
	assert.Equal(t, 30, *p.Get(r3))
}

func TestPool_Exhausted(t *testing.T) {
	p := New[int](2)
	_, err := p.Alloc(1)
	assert.NoError(t, err)
	_, err = p.Alloc(2)
	assert.NoError(t, err)

	_, err = p.Alloc(3)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestPool_DoubleFreeChecked(t *testing.T) {
	p := New[int](2)
	r, err := p.Alloc(1)
	assert.NoError(t, err)

	assert.NoError(t, p.FreeChecked(r))
	assert.ErrorIs(t, p.FreeChecked(r), ErrDoubleFree)

	// Release-build Free is idempotent by design.
	assert.NotPanics(t, func() { p.Free(r) })
}

func TestPool_ZeroCapacity(t *testing.T) {
	p := New[int](0)
	_, err := p.Alloc(1)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestPool_RefStabilityAcrossAllocs(t *testing.T) {
	p := New[int](8)
	refs := make([]Ref, 0, 8)
	for i := 0; i < 8; i++ {
		r, err := p.Alloc(i)
		assert.NoError(t, err)
		refs = append(refs, r)
	}
	for i, r := range refs {
		assert.Equal(t, i, *p.Get(r))
	}
}
