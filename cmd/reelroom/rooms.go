package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelroom/reelroom/internal/tmdb"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Manage watch rooms and their content pools",
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room with a genre filter",
	Long: `Create a room with a genre filter and build its initial pool.

Genres may be given as TMDB IDs or names; names are fuzzy-matched, so
"comdey" still resolves to Comedy.

Examples:
  reelroom rooms create --type movie --genres 28,12
  reelroom rooms create --type tv --genres action,comedy`,
	RunE: runRoomsCreate,
}

var roomsShowCmd = &cobra.Command{
	Use:   "show <room-id>",
	Short: "Show a room and its pool",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomsShow,
}

var roomsReplenishCmd = &cobra.Command{
	Use:   "replenish <room-id>",
	Short: "Rebuild a room's pool, excluding already-shown content",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomsReplenish,
}

var roomsShownCmd = &cobra.Command{
	Use:   "shown <room-id> <content-id>...",
	Short: "Mark content as shown to the room",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRoomsShown,
}

var roomsDeleteCmd = &cobra.Command{
	Use:   "delete <room-id>",
	Short: "Delete a room and its pool",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomsDelete,
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.AddCommand(roomsCreateCmd, roomsShowCmd, roomsReplenishCmd, roomsShownCmd, roomsDeleteCmd)

	roomsCreateCmd.Flags().String("type", "movie", "Media type (movie or tv)")
	roomsCreateCmd.Flags().String("genres", "", "Comma-separated genre IDs or names")

	roomsReplenishCmd.Flags().StringSlice("exclude", nil, "Extra content IDs to exclude")
}

// parseGenres turns a comma-separated list of IDs or names into genre IDs.
func parseGenres(media tmdb.MediaType, raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if id, err := strconv.Atoi(tok); err == nil {
			ids = append(ids, id)
			continue
		}
		g, ok := tmdb.ResolveGenre(media, tok)
		if !ok {
			return nil, fmt.Errorf("unknown genre: %q", tok)
		}
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func runRoomsCreate(cmd *cobra.Command, args []string) error {
	mediaType, _ := cmd.Flags().GetString("type")
	rawGenres, _ := cmd.Flags().GetString("genres")

	genreIDs, err := parseGenres(tmdb.MediaType(mediaType), rawGenres)
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	resp, err := client.CreateRoom(mediaType, genreIDs)
	if err != nil {
		return fmt.Errorf("create room failed: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	fmt.Printf("Room %s created (%s, genres %v)\n\n", resp.Room.ID, resp.Room.MediaType, resp.Room.GenreIDs)
	printPool(resp.Pool)
	return nil
}

func runRoomsShow(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	resp, err := client.Room(args[0])
	if err != nil {
		return fmt.Errorf("show room failed: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	fmt.Printf("Room %s | %s | genres %v | created %s\n\n",
		resp.Room.ID, resp.Room.MediaType, resp.Room.GenreIDs, resp.Room.CreatedAt)
	printPool(resp.Pool)
	return nil
}

func runRoomsReplenish(cmd *cobra.Command, args []string) error {
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	client := NewClient(serverURL)

	// Replenishment requires the room's original criteria.
	current, err := client.Room(args[0])
	if err != nil {
		return fmt.Errorf("load room failed: %w", err)
	}

	resp, err := client.Replenish(args[0], current.Room.MediaType, current.Room.GenreIDs, exclude)
	if err != nil {
		return fmt.Errorf("replenish failed: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	fmt.Printf("Pool replenished: %d items\n\n", resp.Total)
	printPool(resp.Items)
	return nil
}

func runRoomsShown(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	resp, err := client.TrackShown(args[0], args[1:])
	if err != nil {
		return fmt.Errorf("track shown failed: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	fmt.Printf("Tracked %d items\n", resp.Tracked)
	if resp.ShouldReplenish {
		fmt.Println("Pool is running low; run 'reelroom rooms replenish' to refill.")
	}
	return nil
}

func runRoomsDelete(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	if err := client.DeleteRoom(args[0]); err != nil {
		return fmt.Errorf("delete room failed: %w", err)
	}
	fmt.Printf("Room %s deleted\n", args[0])
	return nil
}

func printPool(items []PoolItemResponse) {
	if len(items) == 0 {
		fmt.Println("Pool is empty.")
		return
	}
	for _, item := range items {
		fmt.Printf("  [%s] %s (%s) rating %.1f genres %v\n",
			item.PriorityTag, item.Title, item.ReleaseDate, item.Rating, item.GenreIDs)
	}
}
