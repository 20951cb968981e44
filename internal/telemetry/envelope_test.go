package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/overlaycast/overlaycast/internal/overlay"
)

// TestEnvelopeWireShape checks the invariants every published frame must
// hold: a constant outer action, only non-empty fields under data, and the
// overlay action renamed to actionText.
func TestEnvelopeWireShape(t *testing.T) {
	payload, err := json.Marshal(NewEnvelope(overlay.Snapshot{
		Goal:   "Explore foyer",
		Action: "move_to location=library",
	}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "telemetry", decoded["action"])

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, map[string]any{
		"goal":       "Explore foyer",
		"actionText": "move_to location=library",
	}, data)
}

func TestEnvelopeOmitsEmptyFields(t *testing.T) {
	payload, err := json.Marshal(NewEnvelope(overlay.Snapshot{Result: "OK"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"action":"telemetry","data":{"result":"OK"}}`, string(payload))

	payload, err = json.Marshal(NewEnvelope(overlay.Snapshot{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"action":"telemetry","data":{}}`, string(payload))
}

func TestEnvelopeCarriesAllFields(t *testing.T) {
	payload, err := json.Marshal(NewEnvelope(overlay.Snapshot{
		Goal:      "g",
		Action:    "a",
		Rationale: "r",
		Result:    "ok",
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{"action":"telemetry","data":{"goal":"g","actionText":"a","rationale":"r","result":"ok"}}`, string(payload))
}
