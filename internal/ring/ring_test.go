package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_BoundedEviction(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{3, 4, 5}, b.Items())

	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 5, latest)
}

func TestBuffer_Unbounded(t *testing.T) {
	b := New[int](0)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}

	assert.Equal(t, 5, b.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.Items())
}

func TestBuffer_FillWithoutEviction(t *testing.T) {
	b := New[string](2)
	b.Push("a")
	assert.Equal(t, []string{"a"}, b.Items())
	b.Push("b")
	assert.Equal(t, []string{"a", "b"}, b.Items())
	b.Push("c")
	assert.Equal(t, []string{"b", "c"}, b.Items())
}

func TestBuffer_Empty(t *testing.T) {
	b := New[int](3)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Items())

	_, ok := b.Latest()
	assert.False(t, ok)
}

func TestBuffer_ItemsIsACopy(t *testing.T) {
	b := New[int](0)
	b.Push(1)
	items := b.Items()
	items[0] = 99
	assert.Equal(t, []int{1}, b.Items())
}
