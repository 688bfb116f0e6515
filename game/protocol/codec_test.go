package protocol

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestPeekEnvelope(t *testing.T) {
	data := []byte(`{"type":"bulletSpawned","roomCode":"AB12CD","id":"u1","position":[0,1,2]}`)

	env, err := PeekEnvelope(data)
	if err != nil {
		t.Fatalf("PeekEnvelope failed: %v", err)
	}
	if env.Type != TypeBulletSpawned {
		t.Errorf("Expected type %q, got %q", TypeBulletSpawned, env.Type)
	}
	if env.RoomCode != "AB12CD" {
		t.Errorf("Expected room code AB12CD, got %q", env.RoomCode)
	}
	if env.SenderID != "" {
		t.Errorf("Expected empty senderId before relay, got %q", env.SenderID)
	}
}

func TestPeekEnvelopeRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyFrame},
		{"not json", []byte("not json at all"), ErrInvalidFrame},
		{"no type", []byte(`{"roomCode":"AB12CD"}`), ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PeekEnvelope(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStampSenderOverwritesClientValue(t *testing.T) {
	// A client must not be able to forge senderId.
	data := []byte(`{"type":"bulletSpawned","id":"u1","senderId":"forged","speed":30}`)

	stamped, err := StampSender(data, "client-7")
	if err != nil {
		t.Fatalf("StampSender failed: %v", err)
	}

	var out struct {
		Type     string  `json:"type"`
		ID       string  `json:"id"`
		SenderID string  `json:"senderId"`
		Speed    float64 `json:"speed"`
	}
	if err := json.Unmarshal(stamped, &out); err != nil {
		t.Fatalf("Stamped frame is not valid JSON: %v", err)
	}

	if out.SenderID != "client-7" {
		t.Errorf("Expected senderId client-7, got %q", out.SenderID)
	}
	if out.Type != TypeBulletSpawned || out.ID != "u1" || out.Speed != 30 {
		t.Errorf("StampSender altered unrelated fields: %+v", out)
	}
}

func TestStampSenderRejectsNonObject(t *testing.T) {
	if _, err := StampSender([]byte(`[1,2,3]`), "x"); !errors.Is(err, ErrNotAnObject) {
		t.Errorf("Expected ErrNotAnObject, got %v", err)
	}
}

func TestVec3MarshalsAsArray(t *testing.T) {
	msg := BulletSpawned{
		Envelope:  Envelope{Type: TypeBulletSpawned},
		ID:        "u1",
		Position: Vec3{1, 2, 3},
		Direction: Vec3{0, 0, -1},
		Speed:     25,
	}

	data, err := Encode(msg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Encoded frame is not an object: %v", err)
	}
	if string(raw["position"]) != "[1,2,3]" {
		t.Errorf("Expected position [1,2,3], got %s", raw["position"])
	}
	if string(raw["direction"]) != "[0,0,-1]" {
		t.Errorf("Expected direction [0,0,-1], got %s", raw["direction"])
	}

	decoded, err := DecodeAs[BulletSpawned](data)
	if err != nil {
		t.Fatalf("DecodeAs failed: %v", err)
	}
	if decoded.Position != msg.Position || decoded.Direction != msg.Direction {
		t.Errorf("Round trip mismatch: %+v", decoded)
	}
}

func TestQuatNlerpShortestArc(t *testing.T) {
	q := Quat{0, 0, 0, 1}
	r := Quat{0, 0, 0, -1} // same rotation, opposite sign

	out := q.Nlerp(r, 0.5)
	if out[3] < 0.99 {
		t.Errorf("Nlerp did not take the shortest arc: %v", out)
	}
}

func TestVec3Normalized(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalized()
	if math.Abs(v.Norm()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %v", v.Norm())
	}

	zero := Vec3{}.Normalized()
	if zero != (Vec3{}) {
		t.Errorf("Zero vector should normalize to itself, got %v", zero)
	}
}
