package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Post a single message without joining",
	Long: `Posts one message through the server's HTTP side channel. The
message is broadcast to everyone in the room and recorded in history;
no websocket session is opened.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postMessage(serverAddress, displayName, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func postMessage(server, name, message string) error {
	body, err := json.Marshal(map[string]string{
		"message": message,
		"name":    name,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(server+"/message", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("posting message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error != "" {
			return fmt.Errorf("server rejected message: %s", errBody.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}
