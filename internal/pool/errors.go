package pool

// Validation error codes surfaced to callers.
const (
	CodeInvalidMediaType = "invalid_media_type"
	CodeTooManyGenres    = "too_many_genres"
	CodeInvalidGenreID   = "invalid_genre_id"
	CodeCriteriaMismatch = "criteria_mismatch"
)

// ValidationError marks a request the pipeline refused before touching
// the provider. It is the only error class a pool build surfaces for
// bad input; provider and cache failures degrade instead.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}
