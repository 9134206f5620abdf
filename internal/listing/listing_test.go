package listing

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	key   string
	value int
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize},
		{"negative", -3, -1, 1, DefaultPageSize},
		{"clamped", 2, 1000, 2, MaxPageSize},
		{"kept", 4, 7, 4, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := Normalize(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSz, size)
		})
	}
}

func TestApply(t *testing.T) {
	items := []row{{"a", 3}, {"b", 1}, {"c", 2}, {"d", 1}, {"e", 5}}
	byValue := func(a, b row) int { return cmp.Compare(a.value, b.value) }

	t.Run("sort ascending is stable", func(t *testing.T) {
		p := Apply(items, Query[row]{Compare: byValue})
		assert.Equal(t, []row{{"b", 1}, {"d", 1}, {"c", 2}, {"a", 3}, {"e", 5}}, p.Items)
	})

	t.Run("sort descending keeps ties in input order", func(t *testing.T) {
		p := Apply(items, Query[row]{Compare: byValue, Descending: true})
		assert.Equal(t, []row{{"e", 5}, {"a", 3}, {"c", 2}, {"b", 1}, {"d", 1}}, p.Items)
	})

	t.Run("filter and paginate", func(t *testing.T) {
		p := Apply(items, Query[row]{
			Filter:   func(r row) bool { return r.value > 1 },
			Compare:  byValue,
			Page:     2,
			PageSize: 2,
		})
		assert.Equal(t, []row{{"e", 5}}, p.Items)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, 2, p.TotalPages)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		p := Apply(items, Query[row]{Page: 9, PageSize: 2})
		assert.NotNil(t, p.Items)
		assert.Empty(t, p.Items)
		assert.Equal(t, 5, p.Total)
		assert.Equal(t, 3, p.TotalPages)
	})

	t.Run("input is left untouched", func(t *testing.T) {
		Apply(items, Query[row]{Compare: byValue})
		assert.Equal(t, row{"a", 3}, items[0])
	})
}
