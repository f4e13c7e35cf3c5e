package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	got := Filter([]int{1, 2, 3, 4, 5}, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{2, 4}, got)
}

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(n int) int { return n * 10 })
	assert.Equal(t, []int{10, 20, 30}, got)
}

func TestGroupBy(t *testing.T) {
	type rec struct{ owner, id string }
	records := []rec{
		{"a", "1"},
		{"b", "2"},
		{"a", "3"},
	}

	got := GroupBy(records, func(r rec) string { return r.owner })
	assert.Len(t, got, 2)
	assert.Equal(t, []rec{{"a", "1"}, {"a", "3"}}, got["a"])
	assert.Equal(t, []rec{{"b", "2"}}, got["b"])
}

func TestPtr(t *testing.T) {
	p := Ptr("x")
	assert.Equal(t, "x", *p)
}
