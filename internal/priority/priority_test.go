package priority_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelroom/reelroom/internal/priority"
)

func TestRelevanceScore(t *testing.T) {
	tests := []struct {
		name       string
		itemGenres []int
		target     []int
		want       float64
	}{
		{"all target genres present", []int{28, 12, 53}, []int{28, 12}, 1.0},
		{"exact set", []int{28, 12}, []int{28, 12}, 1.0},
		{"half match", []int{28, 99}, []int{28, 12}, 0.4},
		{"one of three", []int{12}, []int{28, 12, 53}, 0.8 / 3},
		{"no match", []int{99}, []int{28, 12}, 0.0},
		{"empty target vs genred content", []int{28}, nil, 0.0},
		{"empty target vs empty content", nil, nil, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, priority.RelevanceScore(tt.itemGenres, tt.target), 1e-9)
		})
	}
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "all_genres", priority.AllGenres.String())
	assert.Equal(t, "any_genre", priority.AnyGenre.String())
	assert.Equal(t, "popular", priority.Popular.String())
	assert.Equal(t, "unknown", priority.Priority(0).String())
}
