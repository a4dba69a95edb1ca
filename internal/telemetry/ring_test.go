package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_OverwritesOldestFirst(t *testing.T) {
	r := newRing[int](3)
	assert.Empty(t, r.items())

	for i := 1; i <= 5; i++ {
		r.push(i)
	}
	assert.Equal(t, []int{3, 4, 5}, r.items())
	assert.Equal(t, 3, r.len())
	assert.EqualValues(t, 5, r.total)

	r.reset()
	assert.Empty(t, r.items())
	r.push(9)
	assert.Equal(t, []int{9}, r.items())
}

func TestRing_PartiallyFilled(t *testing.T) {
	r := newRing[string](4)
	r.push("a")
	r.push("b")
	assert.Equal(t, []string{"a", "b"}, r.items())
}
