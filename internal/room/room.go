// Package room manages rooms, their immutable filter criteria, and
// their persisted content pools.
package room

import (
	"encoding/json"
	"time"

	"github.com/reelroom/reelroom/internal/priority"
	"github.com/reelroom/reelroom/internal/tmdb"
)

// Criteria is a room's content filter, fixed at room creation. The
// engine treats accepted criteria as read-only; replenishment must
// present criteria identical to what the room was created with.
type Criteria struct {
	MediaType tmdb.MediaType `json:"mediaType"`
	GenreIDs  []int          `json:"genreIds"`
	RoomID    string         `json:"roomId,omitempty"`
}

// Canonical serializes the filter portion of the criteria (media type
// and genre IDs in their original order) for byte-for-byte identity
// checks. Room ID is addressing, not filter state, and is excluded.
func (c Criteria) Canonical() []byte {
	b, _ := json.Marshal(struct {
		MediaType tmdb.MediaType `json:"mediaType"`
		GenreIDs  []int          `json:"genreIds"`
	}{c.MediaType, c.GenreIDs})
	return b
}

// Equal reports whether two criteria are byte-for-byte identical.
func (c Criteria) Equal(other Criteria) bool {
	return string(c.Canonical()) == string(other.Canonical())
}

// PoolEntry is a catalog item decorated with the tier it was selected
// in and when it entered the pool.
type PoolEntry struct {
	Item     tmdb.Item         `json:"item"`
	Priority priority.Priority `json:"priority"`
	AddedAt  time.Time         `json:"addedAt"`
}

// Room is a group of viewers sharing one content pool.
type Room struct {
	ID        string    `json:"id"`
	Criteria  Criteria  `json:"criteria"`
	CreatedAt time.Time `json:"createdAt"`
}
