package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	id   int
	name string
}

func TestPage(t *testing.T) {
	p := NewPage(2, 10)
	assert.Equal(t, 20, p.Skip())
	assert.Equal(t, 3, p.TotalPages(25))
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext(25))
	assert.True(t, p.HasNext(31))

	assert.Equal(t, 0, NewPage(0, 10).TotalPages(0))
	assert.Equal(t, 1, NewPage(0, 10).TotalPages(10))
	assert.False(t, NewPage(0, 10).HasPrev())
}

func TestNewPageClamps(t *testing.T) {
	assert.Equal(t, Page{Number: 0, Size: DefaultSize}, NewPage(-4, 0))
}

func TestAccumulatorMergeDeduplicates(t *testing.T) {
	acc := NewAccumulator(func(r row) int { return r.id })

	assert.Equal(t, 3, acc.Merge([]row{{1, "a"}, {2, "b"}, {3, "c"}}))
	// a new session shifted the second page by one
	assert.Equal(t, 2, acc.Merge([]row{{3, "c2"}, {4, "d"}, {5, "e"}}))

	ids := make([]int, 0, acc.Len())
	for _, r := range acc.Items() {
		ids = append(ids, r.id)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
	assert.Equal(t, "c", acc.Items()[2].name, "first occurrence wins")
}

func TestAccumulatorHasMore(t *testing.T) {
	acc := NewAccumulator(func(r row) int { return r.id })
	total := 4

	acc.Merge([]row{{1, ""}, {2, ""}})
	assert.True(t, acc.HasMore(total))

	acc.Merge([]row{{3, ""}, {4, ""}})
	assert.False(t, acc.HasMore(total))

	assert.Equal(t, 0, acc.Merge(nil))
	assert.False(t, acc.HasMore(total))
}

func TestAccumulatorSkip(t *testing.T) {
	acc := NewAccumulator(func(r row) int { return r.id })

	// the previous request showed 9 and 10; an insert pushed 10 onto this page
	acc.Skip(9, 10)
	assert.Equal(t, 2, acc.Merge([]row{{10, ""}, {11, ""}, {12, ""}}))

	ids := make([]int, 0, acc.Len())
	for _, r := range acc.Items() {
		ids = append(ids, r.id)
	}
	assert.Equal(t, []int{11, 12}, ids)
}
