package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reelroom/reelroom/internal/tmdb"
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the provider's genre vocabulary",
	Long: `List the provider's genre vocabulary for a media type.

With --find, resolve a (possibly misspelled) genre name locally instead
of querying the server.

Examples:
  reelroom genres --type tv
  reelroom genres --find "comdey"`,
	RunE: runGenres,
}

func init() {
	rootCmd.AddCommand(genresCmd)
	genresCmd.Flags().String("type", "movie", "Media type (movie or tv)")
	genresCmd.Flags().String("find", "", "Resolve a genre name to its ID")
}

func runGenres(cmd *cobra.Command, args []string) error {
	mediaType, _ := cmd.Flags().GetString("type")
	find, _ := cmd.Flags().GetString("find")

	if find != "" {
		g, ok := tmdb.ResolveGenre(tmdb.MediaType(mediaType), find)
		if !ok {
			return fmt.Errorf("no genre matches %q", find)
		}
		if jsonOutput {
			printJSON(g)
			return nil
		}
		fmt.Printf("%d  %s\n", g.ID, g.Name)
		return nil
	}

	client := NewClient(serverURL)
	genres, err := client.Genres(mediaType)
	if err != nil {
		return fmt.Errorf("list genres failed: %w", err)
	}

	if jsonOutput {
		printJSON(genres)
		return nil
	}

	for _, g := range genres {
		fmt.Printf("%-6d %s\n", g.ID, g.Name)
	}
	return nil
}
