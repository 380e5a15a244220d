package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlanDeLonga/chatroom/internal/roster"
)

var whoCmd = &cobra.Command{
	Use:   "who",
	Short: "List who is currently in the room",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(serverAddress + "/api/participants")
		if err != nil {
			return fmt.Errorf("fetching participants: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}

		var body struct {
			Participants []roster.Participant `json:"participants"`
			Count        int                  `json:"count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decoding participants: %w", err)
		}

		fmt.Printf("%d in room\n", body.Count)
		for _, p := range body.Participants {
			fmt.Printf("  %s (%s)\n", orAnonymous(p.Name), p.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoCmd)
}
