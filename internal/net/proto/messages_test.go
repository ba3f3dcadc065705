package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeClientIntentRoundTrip(t *testing.T) {
	payload := []byte(`{"type":"play-character","instanceId":"card-1"}`)

	msg, err := DecodeClientIntent(payload)
	require.NoError(t, err)
	require.Equal(t, IntentPlayCharacter, msg.Type)
	require.Equal(t, "card-1", msg.InstanceID)
}

func TestDecodeClientIntentSelectedList(t *testing.T) {
	payload := []byte(`{"type":"resolve-pending-effect","selected":["a","b"]}`)

	msg, err := DecodeClientIntent(payload)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, msg.Selected)
}

func TestDecodeClientIntentMalformedPayload(t *testing.T) {
	_, err := DecodeClientIntent([]byte(`not json`))
	require.Error(t, err)
}

func TestEncodeAddsVersionAndType(t *testing.T) {
	data, err := Encode(EventRoomCreated, RoomInfo{RoomID: "room-1", Status: "waiting"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, float64(Version), decoded["ver"])
	require.Equal(t, EventRoomCreated, decoded["type"])
	require.Equal(t, "room-1", decoded["roomId"])
	require.Equal(t, "waiting", decoded["status"])
}

func TestEncodeError(t *testing.T) {
	data, err := EncodeError(ErrorPayload{Kind: "rules", Code: "phase_mismatch", Message: "wrong phase"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, EventError, decoded["type"])
	require.Equal(t, "phase_mismatch", decoded["code"])
}
