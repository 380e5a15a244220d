// Package events describes the wire protocol spoken over each client's
// websocket. Every frame is an Envelope carrying a named event and a
// JSON payload. Event names and payload keys are kept byte-compatible
// with the original browser protocol, the "incommingMessage" spelling
// included.
package events

import (
	"encoding/json"

	"github.com/AlanDeLonga/chatroom/internal/roster"
)

// Inbound events (client to server). Disconnects have no event; the
// transport close is the signal.
const (
	NewUser    = "newUser"
	NameChange = "nameChange"
)

// Outbound events (server to clients).
const (
	// Connected is unicast once after registration so the client
	// learns its session id.
	Connected = "connected"

	NewConnection    = "newConnection"
	NameChanged      = "nameChanged"
	UserDisconnected = "userDisconnected"

	// IncomingMessage is broadcast on a live send and unicast during
	// history replay.
	IncomingMessage = "incommingMessage"
)

// Envelope wraps every frame on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Marshal builds a wire frame for the given event and payload.
func Marshal(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

type ConnectedPayload struct {
	ID string `json:"id"`
}

type NewUserPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NameChangePayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OldName string `json:"oldname"`
}

type NewConnectionPayload struct {
	Participants []roster.Participant `json:"participants"`
	NewUser      string               `json:"newuser"`
}

type NameChangedPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OldName string `json:"oldname"`
}

type UserDisconnectedPayload struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	Participants []roster.Participant `json:"participants"`
}

type IncomingMessagePayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
