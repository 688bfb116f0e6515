package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skyshot-game/skyshot/game/protocol"
	"github.com/skyshot-game/skyshot/game/room"
)

// startRelay spins up a relay behind an httptest server and returns both.
func startRelay(t *testing.T, capacity int) (*Relay, *httptest.Server) {
	t.Helper()

	relay := NewRelay(room.NewRegistry(capacity))
	go relay.Run()

	server := httptest.NewServer(http.HandlerFunc(relay.ServeWS))
	t.Cleanup(server.Close)
	return relay, server
}

// dial connects a real WebSocket client and consumes the init frame,
// returning the connection and the assigned client id.
func dial(t *testing.T, server *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	url := strings.Replace(server.URL, "http", "ws", 1)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	init := expectFrame[protocol.Init](t, conn, protocol.TypeInit)
	if init.ID == "" {
		t.Fatal("init frame carried no client id")
	}
	return conn, init.ID
}

// readFrame reads one frame with a deadline.
func readFrame(t *testing.T, conn *websocket.Conn) ([]byte, protocol.Envelope) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	env, err := protocol.PeekEnvelope(data)
	if err != nil {
		t.Fatalf("Received unparseable frame %q: %v", data, err)
	}
	return data, env
}

// expectFrame reads one frame and decodes it as the expected type.
func expectFrame[T any](t *testing.T, conn *websocket.Conn, wantType string) T {
	t.Helper()

	data, env := readFrame(t, conn)
	if env.Type != wantType {
		t.Fatalf("Expected %q frame, got %q (%s)", wantType, env.Type, data)
	}
	msg, err := protocol.DecodeAs[T](data)
	if err != nil {
		t.Fatalf("Decode %q frame: %v", wantType, err)
	}
	return msg
}

// expectSilence asserts that no frame arrives within the window.
func expectSilence(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(window))
	_, data, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no frame, got %s", data)
	}
	if !strings.Contains(err.Error(), "timeout") && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected read timeout, got %v", err)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()

	data, err := protocol.Encode(msg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
}

func TestConnectAssignsUniqueIdentities(t *testing.T) {
	_, server := startRelay(t, 4)

	_, idX := dial(t, server)
	_, idY := dial(t, server)

	if idX == idY {
		t.Errorf("Two connections received the same identity %s", idX)
	}
}

func TestHostJoinFlow(t *testing.T) {
	_, server := startRelay(t, 4)

	connX, idX := dial(t, server)
	connY, idY := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	confirm := expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)
	if confirm.RoomCode != "AB12CD" {
		t.Errorf("Expected room AB12CD, got %s", confirm.RoomCode)
	}
	if len(confirm.Members) != 0 {
		t.Errorf("Expected empty member list for a fresh room, got %v", confirm.Members)
	}
	if confirm.HostID != idX {
		t.Errorf("Expected host %s, got %s", idX, confirm.HostID)
	}

	send(t, connY, protocol.JoinRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeJoin, RoomCode: "AB12CD"},
	})
	joined := expectFrame[protocol.RoomConfirm](t, connY, protocol.TypeJoinConfirm)
	if len(joined.Members) != 1 || joined.Members[0] != idX {
		t.Errorf("Expected existing members [%s], got %v", idX, joined.Members)
	}

	notice := expectFrame[protocol.MemberNotice](t, connX, protocol.TypePlayerJoined)
	if notice.ID != idY {
		t.Errorf("Expected playerJoined for %s, got %s", idY, notice.ID)
	}

	// The joiner must not be told about its own arrival.
	expectSilence(t, connY, 300*time.Millisecond)
}

func TestDuplicateHostRejected(t *testing.T) {
	relay, server := startRelay(t, 4)

	connX, _ := dial(t, server)
	connY, _ := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)

	send(t, connY, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	errMsg := expectFrame[protocol.ErrorMessage](t, connY, protocol.TypeError)
	if errMsg.Message == "" {
		t.Error("Expected an error message for the duplicate host request")
	}

	info, err := relay.GetRoom(context.Background(), "AB12CD")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if info.MemberCount != 1 {
		t.Errorf("Rejected host mutated the room: %d members", info.MemberCount)
	}
}

func TestBulletRelayStampsSender(t *testing.T) {
	_, server := startRelay(t, 4)

	connX, idX := dial(t, server)
	connY, _ := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)
	send(t, connY, protocol.JoinRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeJoin, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connY, protocol.TypeJoinConfirm)
	expectFrame[protocol.MemberNotice](t, connX, protocol.TypePlayerJoined)

	send(t, connX, protocol.BulletSpawned{
		Envelope:  protocol.Envelope{Type: protocol.TypeBulletSpawned, SenderID: "forged"},
		ID:        "u1",
		Position:  protocol.Vec3{0, 0, 0},
		Direction: protocol.Vec3{0, 0, -1},
		Speed:     25,
	})

	bullet := expectFrame[protocol.BulletSpawned](t, connY, protocol.TypeBulletSpawned)
	if bullet.SenderID != idX {
		t.Errorf("Expected senderId %s, got %q", idX, bullet.SenderID)
	}
	if bullet.ID != "u1" || bullet.Direction != (protocol.Vec3{0, 0, -1}) {
		t.Errorf("Relay altered the payload: %+v", bullet)
	}

	// The relay never reflects a frame back at its sender.
	expectSilence(t, connX, 300*time.Millisecond)
}

func TestTargetedSignalUnicast(t *testing.T) {
	_, server := startRelay(t, 4)

	connX, _ := dial(t, server)
	connY, idY := dial(t, server)
	connZ, _ := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)
	for _, conn := range []*websocket.Conn{connY, connZ} {
		send(t, conn, protocol.JoinRequest{
			Envelope: protocol.Envelope{Type: protocol.TypeJoin, RoomCode: "AB12CD"},
		})
		expectFrame[protocol.RoomConfirm](t, conn, protocol.TypeJoinConfirm)
	}
	// Drain membership notices.
	expectFrame[protocol.MemberNotice](t, connX, protocol.TypePlayerJoined)
	expectFrame[protocol.MemberNotice](t, connX, protocol.TypePlayerJoined)
	expectFrame[protocol.MemberNotice](t, connY, protocol.TypePlayerJoined)

	send(t, connX, protocol.Signal{
		Envelope: protocol.Envelope{Type: protocol.TypeVoiceOffer, TargetID: idY},
		Payload:  []byte(`{"sdp":"offer"}`),
	})

	offer := expectFrame[protocol.Signal](t, connY, protocol.TypeVoiceOffer)
	if string(offer.Payload) != `{"sdp":"offer"}` {
		t.Errorf("Signal payload altered: %s", offer.Payload)
	}
	expectSilence(t, connZ, 300*time.Millisecond)
}

func TestMalformedFrameKeepsConnectionAlive(t *testing.T) {
	_, server := startRelay(t, 4)

	connX, _ := dial(t, server)
	connY, _ := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)
	send(t, connY, protocol.JoinRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeJoin, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connY, protocol.TypeJoinConfirm)
	expectFrame[protocol.MemberNotice](t, connX, protocol.TypePlayerJoined)

	if err := connX.WriteMessage(websocket.TextMessage, []byte("this is not json")); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	// The connection must survive the bad frame and keep relaying.
	send(t, connX, protocol.BulletSpawned{
		Envelope: protocol.Envelope{Type: protocol.TypeBulletSpawned},
		ID:       "u2",
	})
	bullet := expectFrame[protocol.BulletSpawned](t, connY, protocol.TypeBulletSpawned)
	if bullet.ID != "u2" {
		t.Errorf("Expected bullet u2, got %s", bullet.ID)
	}
}

func TestRoomlessFramesDropped(t *testing.T) {
	_, server := startRelay(t, 4)

	connX, _ := dial(t, server)

	send(t, connX, protocol.BulletSpawned{
		Envelope: protocol.Envelope{Type: protocol.TypeBulletSpawned},
		ID:       "u1",
	})

	// The frame is dropped silently; the connection still works.
	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)
}

func TestDisconnectPromotesHost(t *testing.T) {
	_, server := startRelay(t, 4)

	connX, _ := dial(t, server)
	connY, idY := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)
	send(t, connY, protocol.JoinRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeJoin, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connY, protocol.TypeJoinConfirm)
	expectFrame[protocol.MemberNotice](t, connX, protocol.TypePlayerJoined)

	connX.Close()

	left := expectFrame[protocol.MemberNotice](t, connY, protocol.TypePlayerLeft)
	if left.ID == idY {
		t.Error("playerLeft named the surviving member")
	}
	promoted := expectFrame[protocol.MemberNotice](t, connY, protocol.TypeHostChanged)
	if promoted.ID != idY {
		t.Errorf("Expected %s promoted to host, got %s", idY, promoted.ID)
	}
}

func TestCloseRoomEvictsMembers(t *testing.T) {
	relay, server := startRelay(t, 4)

	connX, _ := dial(t, server)

	send(t, connX, protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: "AB12CD"},
	})
	expectFrame[protocol.RoomConfirm](t, connX, protocol.TypeHostConfirm)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := relay.CloseRoom(ctx, "AB12CD"); err != nil {
		t.Fatalf("CloseRoom failed: %v", err)
	}

	errMsg := expectFrame[protocol.ErrorMessage](t, connX, protocol.TypeError)
	if errMsg.Message == "" {
		t.Error("Expected an eviction notice")
	}

	if _, err := relay.GetRoom(ctx, "AB12CD"); !errors.Is(err, room.ErrRoomNotFound) {
		t.Errorf("Expected room gone after close, got %v", err)
	}
}

func TestAutoJoinFillsOldestRoomFirst(t *testing.T) {
	_, server := startRelay(t, 2)

	connA, _ := dial(t, server)
	send(t, connA, protocol.Envelope{Type: protocol.TypeAutoJoin})
	first := expectFrame[protocol.RoomConfirm](t, connA, protocol.TypeAutoJoinConfirm)

	connB, _ := dial(t, server)
	send(t, connB, protocol.Envelope{Type: protocol.TypeAutoJoin})
	second := expectFrame[protocol.RoomConfirm](t, connB, protocol.TypeAutoJoinConfirm)
	if second.RoomCode != first.RoomCode {
		t.Fatalf("Expected matchmaking into %s, got %s", first.RoomCode, second.RoomCode)
	}
	expectFrame[protocol.MemberNotice](t, connA, protocol.TypePlayerJoined)

	// Room is at capacity 2; the third client gets a fresh room.
	connC, _ := dial(t, server)
	send(t, connC, protocol.Envelope{Type: protocol.TypeAutoJoin})
	third := expectFrame[protocol.RoomConfirm](t, connC, protocol.TypeAutoJoinConfirm)
	if third.RoomCode == first.RoomCode {
		t.Error("Third client matchmade into a full room")
	}
}
