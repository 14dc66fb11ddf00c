// Package ws streams search events to UI clients and accepts control
// messages over a websocket.
package ws

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/protocol"
	"seedscout.gg/internal/searchctl"
	"seedscout.gg/internal/session"
)

type Server struct {
	ctl *searchctl.Controller
	log *log.Logger

	// RunOptions are applied to every start command.
	RunOptions searchctl.Options

	upgrader websocket.Upgrader
}

func NewServer(ctl *searchctl.Controller, logger *log.Logger) *Server {
	return &Server{
		ctl: ctl,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// wsConn serialises writes: the event forwarder and the control-response
// path share one connection, and gorilla allows a single writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		raw, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer raw.Close()
		conn := &wsConn{conn: raw}

		if !s.handshake(conn) {
			return
		}

		sub := s.ctl.Subscribe()
		defer sub.Close()

		// Event forwarder.
		go func() {
			for {
				select {
				case <-sub.Done():
					return
				case e := <-sub.C:
					v, ok := encodeEvent(e)
					if !ok {
						continue
					}
					if err := conn.writeJSON(v); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop: control messages.
		for {
			_, msg, err := raw.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeControl {
				s.sendError(conn, protocol.ErrProtoBadRequest, "expected CONTROL")
				continue
			}
			var ctl protocol.ControlMsg
			if err := json.Unmarshal(msg, &ctl); err != nil || ctl.ProtocolVersion != protocol.Version {
				s.sendError(conn, protocol.ErrProtoBadRequest, "bad control message")
				continue
			}
			s.handleControl(conn, ctl)
		}
	}
}

func (s *Server) handshake(conn *wsConn) bool {
	_ = conn.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.conn.ReadMessage()
	if err != nil {
		return false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello || base.ProtocolVersion != protocol.Version {
		_ = conn.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return false
	}
	_ = conn.conn.SetReadDeadline(time.Time{})

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		Status:          s.status(),
	}
	return conn.writeJSON(welcome) == nil
}

func (s *Server) status() protocol.StatusMsg {
	snap := s.ctl.Session()
	return protocol.StatusMsg{
		Running:     s.ctl.Running(),
		MC:          filter.MCString(snap.MC),
		SearchMode:  snap.Search.Mode,
		Threads:     snap.Search.Threads,
		StartSeed:   snap.Search.StartSeed,
		Conditions:  len(snap.Conds),
		ResultCount: len(snap.Results),
	}
}

func (s *Server) handleControl(conn *wsConn, ctl protocol.ControlMsg) {
	switch ctl.Command {
	case "start":
		if err := s.ctl.Start(s.RunOptions); err != nil {
			s.sendError(conn, protocol.ErrConfigInvalid, err.Error())
		}
	case "stop":
		s.ctl.Stop()
	case "load":
		sess, err := session.Load(ctl.Path, false)
		if err != nil && !errors.Is(err, session.ErrNewerVersion) {
			code := protocol.ErrParse
			var pe *fs.PathError
			if errors.As(err, &pe) {
				code = protocol.ErrIO
			}
			s.sendError(conn, code, err.Error())
			return
		}
		if err != nil {
			s.log.Printf("session %s was written by a newer version", ctl.Path)
		}
		if err := s.ctl.SetSession(sess); err != nil {
			s.sendError(conn, protocol.ErrBusy, err.Error())
		}
	case "save":
		if _, err := session.Save(ctl.Path, s.ctl.Session(), false); err != nil {
			s.sendError(conn, protocol.ErrIO, err.Error())
		}
	default:
		s.sendError(conn, protocol.ErrProtoBadRequest, "unknown command "+ctl.Command)
	}
	s.sendStatus(conn)
}

func (s *Server) sendStatus(conn *wsConn) {
	st := s.status()
	st.Type = protocol.TypeStatus
	_ = conn.writeJSON(st)
}

func (s *Server) sendError(conn *wsConn, code, msg string) {
	_ = conn.writeJSON(protocol.ErrorMsg{Type: protocol.TypeError, Code: code, Message: msg})
}

func encodeEvent(e searchctl.Event) (any, bool) {
	switch ev := e.(type) {
	case searchctl.ProgressEvent:
		return protocol.ProgressMsg{Type: protocol.TypeProgress, Done: ev.Done, Total: ev.Total, Seed: ev.Seed}, true
	case searchctl.ResultsEvent:
		return protocol.ResultsMsg{Type: protocol.TypeResults, Added: ev.Added, Seeds: ev.Seeds}, true
	case searchctl.FinishedEvent:
		return protocol.FinishedMsg{Type: protocol.TypeFinished, Complete: ev.Complete}, true
	default:
		return nil, false
	}
}
