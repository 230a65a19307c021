package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [room-id]",
	Short: "Server or room status",
	Long: `Show server status, or a room's pool health when a room ID is given.

Examples:
  reelroom status             # Server health and provider counters
  reelroom status 2f9c...     # Pool size and replenishment state for a room`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	if len(args) > 0 {
		room, err := client.RoomStatus(args[0])
		if err != nil {
			return fmt.Errorf("room status failed: %w", err)
		}
		if jsonOutput {
			printJSON(room)
			return nil
		}
		fmt.Printf("Room:       %s\n", room.RoomID)
		fmt.Printf("Pool size:  %d\n", room.PoolSize)
		if room.ShouldReplenish {
			fmt.Println("Replenish:  needed (fresh content below threshold)")
		} else {
			fmt.Println("Replenish:  not needed")
		}
		return nil
	}

	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	fmt.Printf("Server:            %s (%s)\n", serverURL, status.Status)
	fmt.Printf("Provider requests: %d\n", status.ProviderRequests)
	fmt.Printf("Dropped records:   %d\n", status.DroppedRecords)
	return nil
}
