package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelroom/reelroom/internal/tmdb"
)

func TestParseGenres_IDs(t *testing.T) {
	ids, err := parseGenres(tmdb.MediaMovie, "28, 12")
	require.NoError(t, err)
	assert.Equal(t, []int{28, 12}, ids)
}

func TestParseGenres_Names(t *testing.T) {
	ids, err := parseGenres(tmdb.MediaMovie, "action,comedy")
	require.NoError(t, err)
	assert.Equal(t, []int{28, 35}, ids)
}

func TestParseGenres_FuzzyName(t *testing.T) {
	ids, err := parseGenres(tmdb.MediaMovie, "comdey")
	require.NoError(t, err)
	assert.Equal(t, []int{35}, ids)
}

func TestParseGenres_Mixed(t *testing.T) {
	ids, err := parseGenres(tmdb.MediaTV, "10759, drama")
	require.NoError(t, err)
	assert.Equal(t, []int{10759, 18}, ids)
}

func TestParseGenres_Unknown(t *testing.T) {
	_, err := parseGenres(tmdb.MediaMovie, "polka")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "polka")
}

func TestParseGenres_Empty(t *testing.T) {
	ids, err := parseGenres(tmdb.MediaMovie, "  ")
	require.NoError(t, err)
	assert.Nil(t, ids)
}
