// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/reelroom/reelroom/internal/pool"
	"github.com/reelroom/reelroom/internal/room"
	"github.com/reelroom/reelroom/internal/tmdb"
)

// ProviderStats exposes catalog client counters for the status endpoint.
type ProviderStats interface {
	Requests() uint64
	DroppedRecords() uint64
}

// Server is the v1 API server.
type Server struct {
	svc   *pool.Service
	stats ProviderStats
}

// New creates a new v1 API server. stats may be nil.
func New(svc *pool.Service, stats ProviderStats) *Server {
	return &Server{svc: svc, stats: stats}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Rooms
	mux.HandleFunc("POST /api/v1/rooms", s.createRoom)
	mux.HandleFunc("GET /api/v1/rooms/{id}", s.getRoom)
	mux.HandleFunc("DELETE /api/v1/rooms/{id}", s.deleteRoom)

	// Pools
	mux.HandleFunc("GET /api/v1/rooms/{id}/pool", s.getPool)
	mux.HandleFunc("POST /api/v1/rooms/{id}/replenish", s.replenish)
	mux.HandleFunc("POST /api/v1/rooms/{id}/shown", s.trackShown)
	mux.HandleFunc("GET /api/v1/rooms/{id}/status", s.roomStatus)

	// Catalog
	mux.HandleFunc("GET /api/v1/genres", s.listGenres)

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *pool.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Code, verr.Message)
	case errors.Is(err, room.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Room not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// pathRoomID extracts the room ID from the URL path.
func pathRoomID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if id == "" {
		return "", fmt.Errorf("missing path parameter: id")
	}
	return id, nil
}

func entryToResponse(e room.PoolEntry) poolItemResponse {
	return poolItemResponse{
		ID:          e.Item.ID,
		Title:       e.Item.Title,
		Overview:    e.Item.Overview,
		PosterPath:  e.Item.PosterPath,
		GenreIDs:    e.Item.GenreIDs,
		Rating:      e.Item.Rating,
		ReleaseDate: e.Item.ReleaseDate,
		Priority:    int(e.Priority),
		PriorityTag: e.Priority.String(),
		AddedAt:     e.AddedAt,
	}
}

func entriesToResponse(entries []room.PoolEntry) []poolItemResponse {
	out := make([]poolItemResponse, len(entries))
	for i, e := range entries {
		out[i] = entryToResponse(e)
	}
	return out
}

func roomToResponse(r *room.Room) roomResponse {
	return roomResponse{
		ID:        r.ID,
		MediaType: string(r.Criteria.MediaType),
		GenreIDs:  r.Criteria.GenreIDs,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	created, entries, err := s.svc.CreateRoom(r.Context(), room.Criteria{
		MediaType: tmdb.MediaType(req.MediaType),
		GenreIDs:  req.GenreIDs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createRoomResponse{
		Room: roomToResponse(created),
		Pool: entriesToResponse(entries),
	})
}

func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathRoomID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	loaded, entries, err := s.svc.Room(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createRoomResponse{
		Room: roomToResponse(loaded),
		Pool: entriesToResponse(entries),
	})
}

func (s *Server) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathRoomID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	if err := s.svc.DeleteRoom(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPool(w http.ResponseWriter, r *http.Request) {
	id, err := pathRoomID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	_, entries, err := s.svc.Room(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poolResponse{
		Items: entriesToResponse(entries),
		Total: len(entries),
	})
}

func (s *Server) replenish(w http.ResponseWriter, r *http.Request) {
	id, err := pathRoomID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	var req replenishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	entries, err := s.svc.Replenish(r.Context(), id, room.Criteria{
		MediaType: tmdb.MediaType(req.MediaType),
		GenreIDs:  req.GenreIDs,
	}, req.ExcludeIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, poolResponse{
		Items: entriesToResponse(entries),
		Total: len(entries),
	})
}

func (s *Server) trackShown(w http.ResponseWriter, r *http.Request) {
	id, err := pathRoomID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	var req shownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if err := s.svc.TrackShown(r.Context(), id, req.ContentIDs); err != nil {
		writeServiceError(w, err)
		return
	}

	low, err := s.svc.ShouldReplenish(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shownResponse{
		Tracked:         len(req.ContentIDs),
		ShouldReplenish: low,
	})
}

func (s *Server) roomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathRoomID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	_, entries, err := s.svc.Room(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	low, err := s.svc.ShouldReplenish(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roomStatusResponse{
		RoomID:          id,
		PoolSize:        len(entries),
		ShouldReplenish: low,
	})
}

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	media := tmdb.MediaType(r.URL.Query().Get("type"))
	if media == "" {
		media = tmdb.MediaMovie
	}

	genres, err := s.svc.Genres(r.Context(), media)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]genreResponse, len(genres))
	for i, g := range genres {
		out[i] = genreResponse{ID: g.ID, Name: g.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: "ok"}
	if s.stats != nil {
		resp.ProviderRequests = s.stats.Requests()
		resp.DroppedRecords = s.stats.DroppedRecords()
	}
	writeJSON(w, http.StatusOK, resp)
}
