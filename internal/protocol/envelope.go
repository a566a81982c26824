// Package protocol defines the JSON envelope exchanged with browser clients.
package protocol

import "encoding/json"

// Envelope types.
const (
	TypeMessage = "message"
	TypePing    = "ping"
)

// Envelope is the discriminated payload carried by every frame in either
// direction.
type Envelope struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// DecodeCommand extracts the command text from an inbound frame.
//
// Postcondition: Returns (content, true) only for well-formed "message"
// envelopes; malformed JSON and every other type yield ("", false).
func DecodeCommand(data []byte) (string, bool) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", false
	}
	if env.Type != TypeMessage {
		return "", false
	}
	return env.Content, true
}

// EncodeMessage renders content as an outbound message frame.
func EncodeMessage(content string) []byte {
	return encode(Envelope{Type: TypeMessage, Content: content})
}

// EncodePing renders the keepalive frame.
func EncodePing() []byte {
	return encode(Envelope{Type: TypePing})
}

func encode(env Envelope) []byte {
	// Marshal of a struct of two strings cannot fail.
	data, _ := json.Marshal(env)
	return data
}
