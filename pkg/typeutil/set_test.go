package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := NewSet("PUT", "GET", "DELETE", "GET")

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("GET"))
	assert.False(t, s.Contains("POST"))
	assert.Equal(t, []string{"DELETE", "GET", "PUT"}, s.ToList())
}

func TestSetZeroValue(t *testing.T) {
	var s Set[int]
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.ToList())

	var nilSet *Set[int]
	assert.False(t, nilSet.Contains(1))

	s.Add(3)
	s.Add(1)
	assert.Equal(t, []int{1, 3}, s.ToList())
}
