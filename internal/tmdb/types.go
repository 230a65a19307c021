// Package tmdb provides a client for The Movie Database discover API.
package tmdb

import "strconv"

// MediaType selects the provider endpoint and field mapping.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Valid reports whether the media type is one the provider supports.
func (m MediaType) Valid() bool {
	return m == MediaMovie || m == MediaTV
}

// GenreMode controls how multiple genre IDs combine in a discover query.
type GenreMode int

const (
	// GenreModeNone omits the genre filter entirely.
	GenreModeNone GenreMode = iota
	// GenreModeAll requires every genre (provider comma syntax).
	GenreModeAll
	// GenreModeAny matches any genre (provider pipe syntax).
	GenreModeAny
)

// Item is a catalog record normalized across movie and TV responses.
type Item struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"posterPath,omitempty"`
	GenreIDs    []int   `json:"genreIds"`
	Rating      float64 `json:"rating"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
}

// Genre is one entry of the provider's genre vocabulary.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DiscoverQuery specifies one page of a discover request.
type DiscoverQuery struct {
	MediaType  MediaType
	GenreIDs   []int
	GenreMode  GenreMode
	SortBy     string // empty means popularity.desc
	Page       int    // 1-based; 0 means first page
	ExcludeIDs map[string]struct{}
}

// rawItem carries the provider-native field names for both media types.
// Movies populate title/release_date, TV populates name/first_air_date.
type rawItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
}

type discoverResponse struct {
	Page         int       `json:"page"`
	Results      []rawItem `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// normalize converts a raw record into an Item, reporting false when the
// record is missing a required field for its media type. Third-party feeds
// routinely ship partial records; those are dropped, not errors.
func normalize(media MediaType, r rawItem) (Item, bool) {
	title := r.Title
	date := r.ReleaseDate
	if media == MediaTV {
		title = r.Name
		date = r.FirstAirDate
	}

	if title == "" || date == "" || r.Overview == "" || len(r.GenreIDs) == 0 {
		return Item{}, false
	}

	return Item{
		ID:          strconv.FormatInt(r.ID, 10),
		Title:       title,
		Overview:    r.Overview,
		PosterPath:  r.PosterPath,
		GenreIDs:    r.GenreIDs,
		Rating:      r.VoteAverage,
		ReleaseDate: date,
	}, true
}
