package ws

import "encoding/json"

const (
	// client - server
	MsgStart = "start"
	MsgReset = "reset"
	MsgPing  = "ping"

	// server - client
	MsgReady = "ready"
	MsgState = "state"
	MsgPong  = "pong"
	MsgAck   = "ack"
	MsgError = "error"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type AckPayload struct {
	Gesture   string `json:"gesture"`
	Debounced bool   `json:"debounced,omitempty"`
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		data, _ = json.Marshal(Message{Type: MsgError, Payload: ErrorPayload{Message: "encode failed"}})
	}
	return data
}

func errorMessage(text string) []byte {
	return encode(Message{Type: MsgError, Payload: ErrorPayload{Message: text}})
}
