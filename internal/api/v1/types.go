package v1

import "time"

// createRoomRequest is the body for POST /rooms.
type createRoomRequest struct {
	MediaType string `json:"media_type"`
	GenreIDs  []int  `json:"genre_ids"`
}

// replenishRequest is the body for POST /rooms/{id}/replenish. The
// criteria must repeat the room's original filter.
type replenishRequest struct {
	MediaType  string   `json:"media_type"`
	GenreIDs   []int    `json:"genre_ids"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
}

// shownRequest is the body for POST /rooms/{id}/shown.
type shownRequest struct {
	ContentIDs []string `json:"content_ids"`
}

// poolItemResponse is the API representation of one pool entry.
type poolItemResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	PosterPath  string    `json:"poster_path,omitempty"`
	GenreIDs    []int     `json:"genre_ids"`
	Rating      float64   `json:"rating"`
	ReleaseDate string    `json:"release_date"`
	Priority    int       `json:"priority"`
	PriorityTag string    `json:"priority_tag"`
	AddedAt     time.Time `json:"added_at"`
}

// roomResponse is the API representation of a room.
type roomResponse struct {
	ID        string    `json:"id"`
	MediaType string    `json:"media_type"`
	GenreIDs  []int     `json:"genre_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// createRoomResponse is the response for POST /rooms.
type createRoomResponse struct {
	Room roomResponse       `json:"room"`
	Pool []poolItemResponse `json:"pool"`
}

// poolResponse is the response for pool reads and replenishment.
type poolResponse struct {
	Items []poolItemResponse `json:"items"`
	Total int                `json:"total"`
}

// roomStatusResponse is the response for GET /rooms/{id}/status.
type roomStatusResponse struct {
	RoomID          string `json:"room_id"`
	PoolSize        int    `json:"pool_size"`
	ShouldReplenish bool   `json:"should_replenish"`
}

// shownResponse is the response for POST /rooms/{id}/shown.
type shownResponse struct {
	Tracked         int  `json:"tracked"`
	ShouldReplenish bool `json:"should_replenish"`
}

// genreResponse is one entry of the genre vocabulary.
type genreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status           string `json:"status"`
	ProviderRequests uint64 `json:"provider_requests"`
	DroppedRecords   uint64 `json:"dropped_records"`
}
