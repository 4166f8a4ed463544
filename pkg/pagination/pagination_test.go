package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 10}, Params{}.Normalize(0))
	assert.Equal(t, Params{Page: 1, Limit: 20}, Params{Page: -3}.Normalize(20))
	assert.Equal(t, Params{Page: 4, Limit: MaxLimit}, Params{Page: 4, Limit: 5000}.Normalize(10))
	assert.Equal(t, Params{Page: 2, Limit: 7}, Params{Page: 2, Limit: 7}.Normalize(10))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Params{Page: 0, Limit: 10}.Offset())
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}
