package ws

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen48"
	"seedscout.gg/internal/protocol"
	"seedscout.gg/internal/scheduler"
	"seedscout.gg/internal/searchctl"
	"seedscout.gg/internal/session"
)

func dialTest(t *testing.T) (*websocket.Conn, *searchctl.Controller, func()) {
	t.Helper()
	ctl := searchctl.New(log.New(os.Stderr, "[wstest] ", 0))
	srv := NewServer(ctl, log.New(os.Stderr, "[wstest] ", 0))
	hs := httptest.NewServer(srv.Handler())

	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		hs.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, ctl, func() {
		conn.Close()
		hs.Close()
	}
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, _ := json.Marshal(v)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readType(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base.Type, msg
}

func TestHandshakeAndSave(t *testing.T) {
	conn, ctl, cleanup := dialTest(t)
	defer cleanup()

	sess := &session.Session{
		MC:     filter.MC1_16,
		Search: scheduler.SearchConfig{Mode: scheduler.ModeIncremental, StartSeed: 99, Threads: 2},
		Gen48:  gen48.DefaultSettings(),
	}
	if err := ctl.SetSession(sess); err != nil {
		t.Fatalf("SetSession: %v", err)
	}

	sendJSON(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})
	typ, raw := readType(t, conn)
	if typ != protocol.TypeWelcome {
		t.Fatalf("got %s, want WELCOME", typ)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.Status.StartSeed != 99 || welcome.Status.Running {
		t.Fatalf("welcome status %+v", welcome.Status)
	}

	path := filepath.Join(t.TempDir(), "session.save")
	sendJSON(t, conn, protocol.ControlMsg{
		Type: protocol.TypeControl, ProtocolVersion: protocol.Version,
		Command: "save", Path: path,
	})
	typ, _ = readType(t, conn)
	if typ != protocol.TypeStatus {
		t.Fatalf("got %s, want STATUS", typ)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("save command did not write the session: %v", err)
	}

	loaded, err := session.Load(path, false)
	if err != nil || loaded.Search.StartSeed != 99 {
		t.Fatalf("saved session bad: %+v %v", loaded, err)
	}
}

func TestHandshake_RejectsNonHello(t *testing.T) {
	conn, _, cleanup := dialTest(t)
	defer cleanup()

	sendJSON(t, conn, protocol.ControlMsg{Type: protocol.TypeControl, ProtocolVersion: protocol.Version, Command: "stop"})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to close on a bad handshake")
	}
}

func TestControl_UnknownCommand(t *testing.T) {
	conn, _, cleanup := dialTest(t)
	defer cleanup()

	sendJSON(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})
	if typ, _ := readType(t, conn); typ != protocol.TypeWelcome {
		t.Fatalf("no welcome")
	}

	sendJSON(t, conn, protocol.ControlMsg{
		Type: protocol.TypeControl, ProtocolVersion: protocol.Version, Command: "reboot",
	})
	typ, raw := readType(t, conn)
	if typ != protocol.TypeError {
		t.Fatalf("got %s, want ERROR", typ)
	}
	var em protocol.ErrorMsg
	_ = json.Unmarshal(raw, &em)
	if em.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("error code %s", em.Code)
	}
}
