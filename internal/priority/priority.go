// Package priority ranks catalog candidates into the three-tier
// relevance model: items matching every selected genre first, items
// matching at least one genre second, generic popular content last.
package priority

import "github.com/reelroom/reelroom/internal/tmdb"

// Priority is a relevance tier. Lower value means higher relevance.
type Priority int

const (
	AllGenres Priority = 1
	AnyGenre  Priority = 2
	Popular   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case AllGenres:
		return "all_genres"
	case AnyGenre:
		return "any_genre"
	case Popular:
		return "popular"
	default:
		return "unknown"
	}
}

// Ranked pairs a catalog item with the tier it was selected in.
type Ranked struct {
	Item     tmdb.Item
	Priority Priority
}

// Batch is one tier's contribution to a pool.
type Batch struct {
	Items      []tmdb.Item
	Priority   Priority
	Randomized bool
}

// RelevanceScore measures how well an item's genres satisfy a target
// genre list. Used for diagnostics, never for pool ordering: 1.0 when
// every target genre is present, 0.8 scaled by the matching fraction for
// partial matches, 0.0 for no match. An empty target list scores 0.0
// against genred content and a neutral 0.5 otherwise.
func RelevanceScore(itemGenres, target []int) float64 {
	if len(target) == 0 {
		if len(itemGenres) == 0 {
			return 0.5
		}
		return 0.0
	}

	matching := matchCount(itemGenres, target)
	switch {
	case matching == len(target):
		return 1.0
	case matching > 0:
		return 0.8 * float64(matching) / float64(len(target))
	default:
		return 0.0
	}
}

// Classify returns the tier an item's genre set belongs to relative to
// a target filter: AllGenres when every target genre is present, AnyGenre
// for a partial match, Popular otherwise.
func Classify(itemGenres, target []int) Priority {
	switch {
	case containsAll(itemGenres, target):
		return AllGenres
	case containsAny(itemGenres, target):
		return AnyGenre
	default:
		return Popular
	}
}

// matchCount returns how many target genres appear in itemGenres.
func matchCount(itemGenres, target []int) int {
	have := make(map[int]bool, len(itemGenres))
	for _, g := range itemGenres {
		have[g] = true
	}
	n := 0
	for _, g := range target {
		if have[g] {
			n++
		}
	}
	return n
}

func containsAll(itemGenres, target []int) bool {
	return len(target) > 0 && matchCount(itemGenres, target) == len(target)
}

func containsAny(itemGenres, target []int) bool {
	return matchCount(itemGenres, target) > 0
}
