package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Leomister1233/Backend/internal/query"
)

func TestWindow_PagesPartitionItems(t *testing.T) {
	for n := 0; n <= 23; n++ {
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}

		for limit := 1; limit <= 6; limit++ {
			var seen []int
			pages := query.TotalPages(int64(n), limit)
			for page := 1; page <= int(pages); page++ {
				seen = append(seen, query.Window(items, query.Params{Page: page, Limit: limit})...)
			}
			if n == 0 {
				assert.Empty(t, seen)
				continue
			}
			assert.Equal(t, items, seen, "n=%d limit=%d", n, limit)
		}
	}
}

func TestWindow_PastEndIsEmpty(t *testing.T) {
	got := query.Window([]string{"a", "b"}, query.Params{Page: 5, Limit: 2})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWindow_HugePageIsEmpty(t *testing.T) {
	for _, p := range []query.Params{
		{Page: 4611686018427387905, Limit: 2},
		{Page: 2, Limit: int(^uint(0) >> 1)},
	} {
		got := query.Window([]int{1, 2, 3}, p)

		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestFilter(t *testing.T) {
	even := query.Filter([]int{1, 2, 3, 4, 6}, func(n int) bool { return n%2 == 0 })

	assert.Equal(t, []int{2, 4, 6}, even)
	assert.Empty(t, query.Filter([]int{}, func(int) bool { return true }))
}
