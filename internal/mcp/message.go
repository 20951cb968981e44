// Package mcp implements the ingress side of the bridge: a read-only TCP
// client that decodes JSON-RPC 2.0 traffic from a game-engine tool server.
//
// The producer frames its output two ways, sometimes within one session:
// LSP-style Content-Length header blocks and bare newline-delimited JSON.
// The Decoder accepts both, detecting the framing per frame.
package mcp

import (
	"encoding/json"
	"fmt"
)

// Message is a loosely-validated JSON-RPC 2.0 message. Only the fields the
// bridge maps are decoded; everything else in the frame is ignored.
type Message struct {
	ID     *json.RawMessage `json:"id,omitempty"`
	Method string           `json:"method,omitempty"`
	Params json.RawMessage  `json:"params,omitempty"`
	Result json.RawMessage  `json:"result,omitempty"`
	Error  *RPCError        `json:"error,omitempty"`
}

// RPCError is the JSON-RPC error payload shape used by the producer.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ParseMessage decodes one frame body into a Message.
func ParseMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("parse message: %w", err)
	}
	return msg, nil
}
