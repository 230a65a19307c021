package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the reelroom server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new reelroom API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// API response types (mirror server types)

type PoolItemResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path,omitempty"`
	GenreIDs    []int   `json:"genre_ids"`
	Rating      float64 `json:"rating"`
	ReleaseDate string  `json:"release_date"`
	Priority    int     `json:"priority"`
	PriorityTag string  `json:"priority_tag"`
	AddedAt     string  `json:"added_at"`
}

type RoomResponse struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	GenreIDs  []int  `json:"genre_ids"`
	CreatedAt string `json:"created_at"`
}

type CreateRoomResponse struct {
	Room RoomResponse       `json:"room"`
	Pool []PoolItemResponse `json:"pool"`
}

type PoolResponse struct {
	Items []PoolItemResponse `json:"items"`
	Total int                `json:"total"`
}

type RoomStatusResponse struct {
	RoomID          string `json:"room_id"`
	PoolSize        int    `json:"pool_size"`
	ShouldReplenish bool   `json:"should_replenish"`
}

type ShownResponse struct {
	Tracked         int  `json:"tracked"`
	ShouldReplenish bool `json:"should_replenish"`
}

type GenreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type StatusResponse struct {
	Status           string `json:"status"`
	ProviderRequests uint64 `json:"provider_requests"`
	DroppedRecords   uint64 `json:"dropped_records"`
}

// API methods

func (c *Client) CreateRoom(mediaType string, genreIDs []int) (*CreateRoomResponse, error) {
	req := map[string]any{
		"media_type": mediaType,
		"genre_ids":  genreIDs,
	}

	var resp CreateRoomResponse
	if err := c.post("/api/v1/rooms", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Room(id string) (*CreateRoomResponse, error) {
	var resp CreateRoomResponse
	if err := c.get("/api/v1/rooms/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Pool(id string) (*PoolResponse, error) {
	var resp PoolResponse
	if err := c.get("/api/v1/rooms/"+url.PathEscape(id)+"/pool", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Replenish(id, mediaType string, genreIDs []int, excludeIDs []string) (*PoolResponse, error) {
	req := map[string]any{
		"media_type":  mediaType,
		"genre_ids":   genreIDs,
		"exclude_ids": excludeIDs,
	}

	var resp PoolResponse
	if err := c.post("/api/v1/rooms/"+url.PathEscape(id)+"/replenish", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TrackShown(id string, contentIDs []string) (*ShownResponse, error) {
	req := map[string]any{"content_ids": contentIDs}

	var resp ShownResponse
	if err := c.post("/api/v1/rooms/"+url.PathEscape(id)+"/shown", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RoomStatus(id string) (*RoomStatusResponse, error) {
	var resp RoomStatusResponse
	if err := c.get("/api/v1/rooms/"+url.PathEscape(id)+"/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteRoom(id string) error {
	return c.delete("/api/v1/rooms/" + url.PathEscape(id))
}

func (c *Client) Genres(mediaType string) ([]GenreResponse, error) {
	var resp []GenreResponse
	if err := c.get("/api/v1/genres?type="+url.QueryEscape(mediaType), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
