package tmdb

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// TMDB keeps disjoint genre taxonomies per media type. Several movie
// genres have no TV counterpart and collapse into combined TV genres.
var movieToTVGenre = map[int]int{
	28:    10759, // Action -> Action & Adventure
	12:    10759, // Adventure -> Action & Adventure
	878:   10765, // Science Fiction -> Sci-Fi & Fantasy
	14:    10765, // Fantasy -> Sci-Fi & Fantasy
	10752: 10768, // War -> War & Politics
	36:    10768, // History -> War & Politics
	53:    9648,  // Thriller -> Mystery
}

// movieGenreNames is the provider's movie vocabulary, kept static for
// offline name resolution. The live list comes from the genres endpoint.
var movieGenreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

var tvGenreNames = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	10762: "Kids",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	37:    "Western",
}

// TranslateGenres maps movie genre IDs to their TV equivalents,
// deduplicating collapsed pairs while preserving first-seen order.
// IDs without a mapping pass through unchanged.
func TranslateGenres(media MediaType, genreIDs []int) []int {
	if media != MediaTV || len(genreIDs) == 0 {
		return genreIDs
	}

	out := make([]int, 0, len(genreIDs))
	seen := make(map[int]bool, len(genreIDs))
	for _, id := range genreIDs {
		mapped, ok := movieToTVGenre[id]
		if !ok {
			mapped = id
		}
		if seen[mapped] {
			continue
		}
		seen[mapped] = true
		out = append(out, mapped)
	}
	return out
}

// GenreName returns the static display name for a genre ID, checking the
// vocabulary of the given media type first.
func GenreName(media MediaType, id int) (string, bool) {
	primary, secondary := movieGenreNames, tvGenreNames
	if media == MediaTV {
		primary, secondary = tvGenreNames, movieGenreNames
	}
	if name, ok := primary[id]; ok {
		return name, true
	}
	name, ok := secondary[id]
	return name, ok
}

// resolveThreshold is the minimum Jaro-Winkler similarity accepted when
// no exact vocabulary match exists.
const resolveThreshold = 0.82

// ResolveGenre maps a free-text genre name to a provider genre for the
// given media type. Exact (case-insensitive) matches win; otherwise the
// closest vocabulary entry by Jaro-Winkler similarity is used, so inputs
// like "sci fi" or "comdey" still resolve.
func ResolveGenre(media MediaType, name string) (Genre, bool) {
	vocab := movieGenreNames
	if media == MediaTV {
		vocab = tvGenreNames
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Genre{}, false
	}

	var best Genre
	var bestScore float64
	for id, candidate := range vocab {
		lc := strings.ToLower(candidate)
		if lc == needle {
			return Genre{ID: id, Name: candidate}, true
		}
		score := float64(edlib.JaroWinklerSimilarity(needle, lc))
		if score > bestScore {
			bestScore = score
			best = Genre{ID: id, Name: candidate}
		}
	}

	if bestScore >= resolveThreshold {
		return best, true
	}
	return Genre{}, false
}
