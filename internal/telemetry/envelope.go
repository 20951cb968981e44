// Package telemetry publishes overlay snapshots to the hosted WebSocket
// fan-out endpoint.
package telemetry

import (
	"github.com/overlaycast/overlaycast/internal/overlay"
)

// routeAction is the constant discriminator the downstream router selects
// its fan-out route on.
const routeAction = "telemetry"

// Envelope is the wire form of one publish, sent as a single JSON text
// frame.
type Envelope struct {
	// Action selects the downstream fan-out route; always "telemetry".
	Action string `json:"action"`
	// Data carries the non-empty overlay fields.
	Data EnvelopeData `json:"data"`
}

// EnvelopeData is the overlay snapshot with empty fields omitted. The
// overlay's own action travels as actionText: the router consumes the outer
// action, and an inner field of the same name would collide with it.
type EnvelopeData struct {
	// Goal is the producer's current objective.
	Goal string `json:"goal,omitempty"`
	// ActionText is what the producer is doing right now.
	ActionText string `json:"actionText,omitempty"`
	// Rationale is why the producer is doing it.
	Rationale string `json:"rationale,omitempty"`
	// Result is the outcome of the most recent operation.
	Result string `json:"result,omitempty"`
}

// NewEnvelope builds the envelope for one overlay snapshot.
func NewEnvelope(snap overlay.Snapshot) Envelope {
	return Envelope{
		Action: routeAction,
		Data: EnvelopeData{
			Goal:       snap.Goal,
			ActionText: snap.Action,
			Rationale:  snap.Rationale,
			Result:     snap.Result,
		},
	}
}
