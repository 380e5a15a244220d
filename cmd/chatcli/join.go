package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/AlanDeLonga/chatroom/internal/events"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join the room interactively",
	Long: `Opens a websocket session, replays recent history, and then
relays typed lines as chat messages. Lines starting with "/" are
commands: /name <new> changes the display name, /quit leaves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJoin()
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}

// chatSession holds the live connection state. The read goroutine and
// the stdin loop both touch id and name, hence the mutex.
type chatSession struct {
	conn *websocket.Conn

	mu   sync.Mutex
	id   string
	name string
}

func (s *chatSession) identity() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.name
}

func runJoin() error {
	wsURL, err := websocketURL(serverAddress)
	if err != nil {
		return err
	}

	name := displayName
	if name == "" {
		fmt.Print("Display name: ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		name = strings.TrimSpace(line)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", wsURL, err)
	}
	defer conn.Close()

	sess := &chatSession{conn: conn, name: name}

	done := make(chan struct{})
	go sess.readLoop(done)

	fmt.Printf("Connected to %s as %q. /name <new> renames, /quit leaves.\n", serverAddress, name)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return nil
		case strings.HasPrefix(line, "/name "):
			if err := sess.rename(strings.TrimSpace(strings.TrimPrefix(line, "/name "))); err != nil {
				fmt.Fprintln(os.Stderr, "Rename failed:", err)
			}
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(os.Stderr, "Unknown command %q\n", line)
		default:
			_, current := sess.identity()
			if err := postMessage(serverAddress, current, line); err != nil {
				fmt.Fprintln(os.Stderr, "Send failed:", err)
			}
		}

		select {
		case <-done:
			return fmt.Errorf("connection closed by server")
		default:
		}
	}
	return scanner.Err()
}

// readLoop prints server events until the connection dies. The first
// "connected" frame triggers the join announcement.
func (s *chatSession) readLoop(done chan struct{}) {
	defer close(done)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var env events.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}

		switch env.Event {
		case events.Connected:
			var p events.ConnectedPayload
			if json.Unmarshal(env.Data, &p) != nil {
				continue
			}
			s.mu.Lock()
			s.id = p.ID
			id, name := s.id, s.name
			s.mu.Unlock()
			s.announce(id, name)

		case events.NewConnection:
			var p events.NewConnectionPayload
			if json.Unmarshal(env.Data, &p) != nil {
				continue
			}
			fmt.Printf("* %s joined (%d in room)\n", orAnonymous(p.NewUser), len(p.Participants))

		case events.NameChanged:
			var p events.NameChangedPayload
			if json.Unmarshal(env.Data, &p) != nil {
				continue
			}
			s.mu.Lock()
			if p.ID == s.id {
				s.name = p.Name
			}
			s.mu.Unlock()
			fmt.Printf("* %s is now known as %s\n", orAnonymous(p.OldName), orAnonymous(p.Name))

		case events.UserDisconnected:
			var p events.UserDisconnectedPayload
			if json.Unmarshal(env.Data, &p) != nil {
				continue
			}
			fmt.Printf("* %s left (%d in room)\n", orAnonymous(p.Username), len(p.Participants))

		case events.IncomingMessage:
			var p events.IncomingMessagePayload
			if json.Unmarshal(env.Data, &p) != nil {
				continue
			}
			fmt.Printf("<%s> %s\n", orAnonymous(p.Name), p.Message)
		}
	}
}

func (s *chatSession) announce(id, name string) {
	frame, err := events.Marshal(events.NewUser, events.NewUserPayload{ID: id, Name: name})
	if err != nil {
		return
	}
	s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *chatSession) rename(newName string) error {
	if newName == "" {
		return fmt.Errorf("name must not be empty")
	}

	s.mu.Lock()
	id, oldName := s.id, s.name
	s.mu.Unlock()

	frame, err := events.Marshal(events.NameChange, events.NameChangePayload{
		ID:      id,
		Name:    newName,
		OldName: oldName,
	})
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// websocketURL rewrites the configured HTTP base URL into its /ws
// websocket counterpart.
func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", base, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in server address", u.Scheme)
	}

	u.Path = "/ws"
	return u.String(), nil
}

func orAnonymous(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}
