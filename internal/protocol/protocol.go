// Package protocol defines the wire messages between the search core and
// its UI clients.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello    = "HELLO"
	TypeWelcome  = "WELCOME"
	TypeControl  = "CONTROL"
	TypeStatus   = "STATUS"
	TypeProgress = "PROGRESS"
	TypeResults  = "RESULTS"
	TypeFinished = "FINISHED"
	TypeError    = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
