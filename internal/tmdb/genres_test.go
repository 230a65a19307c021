package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateGenres_MoviePassthrough(t *testing.T) {
	ids := []int{28, 12, 10752}
	assert.Equal(t, ids, TranslateGenres(MediaMovie, ids))
}

func TestTranslateGenres_TV(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"action and adventure collapse", []int{28, 12}, []int{10759}},
		{"war maps to war and politics", []int{10752}, []int{10768}},
		{"scifi and fantasy collapse", []int{878, 14}, []int{10765}},
		{"unmapped passes through", []int{35, 18}, []int{35, 18}},
		{"mixed preserves order", []int{35, 28, 10752}, []int{35, 10759, 10768}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateGenres(MediaTV, tt.in))
		})
	}
}

func TestGenreName(t *testing.T) {
	name, ok := GenreName(MediaMovie, 28)
	require.True(t, ok)
	assert.Equal(t, "Action", name)

	name, ok = GenreName(MediaTV, 10768)
	require.True(t, ok)
	assert.Equal(t, "War & Politics", name)

	// TV lookup falls back to the movie vocabulary.
	name, ok = GenreName(MediaTV, 10749)
	require.True(t, ok)
	assert.Equal(t, "Romance", name)

	_, ok = GenreName(MediaMovie, 424242)
	assert.False(t, ok)
}

func TestResolveGenre(t *testing.T) {
	g, ok := ResolveGenre(MediaMovie, "action")
	require.True(t, ok)
	assert.Equal(t, 28, g.ID)

	g, ok = ResolveGenre(MediaMovie, "  Horror ")
	require.True(t, ok)
	assert.Equal(t, 27, g.ID)

	// Near-miss spellings resolve via similarity.
	g, ok = ResolveGenre(MediaMovie, "comdey")
	require.True(t, ok)
	assert.Equal(t, 35, g.ID)

	g, ok = ResolveGenre(MediaTV, "war & politics")
	require.True(t, ok)
	assert.Equal(t, 10768, g.ID)

	_, ok = ResolveGenre(MediaMovie, "zzzzzz")
	assert.False(t, ok)

	_, ok = ResolveGenre(MediaMovie, "")
	assert.False(t, ok)
}
