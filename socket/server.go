package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"flare_server/models"
	"flare_server/services"

	"github.com/gorilla/websocket"
)

// SessionResolver resolves the credentials carried by an auth frame.
type SessionResolver interface {
	GetSession(token string) (*models.Session, error)
	ResolveJWT(token string) (*models.Session, error)
}

// Envelope is the wire shape in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type authPayload struct {
	SessionToken string `json:"sessionToken,omitempty"`
	JWT          string `json:"jwt,omitempty"`
}

// ErrPayloadTooLarge is returned by Broadcast before any socket is touched.
// Hitting it is a programming error in the caller, never a client problem.
var ErrPayloadTooLarge = errors.New("broadcast payload exceeds frame budget")

const (
	writeTimeout     = 10 * time.Second
	maxSweepInterval = 5 * time.Second
)

// Conn is one live socket. State transitions happen under the server lock.
type Conn struct {
	ws            *websocket.Conn
	writeMu       sync.Mutex
	session       *models.Session
	authed        bool
	lastHeartbeat time.Time
}

// Server owns every live connection, runs the auth handshake protocol and
// exposes the size-bounded broadcast primitive. The protocol is one-strike:
// any violation after the handshake closes the connection.
type Server struct {
	resolver    SessionResolver
	clock       services.Clock
	frameBudget int
	hbTimeout   time.Duration
	upgrader    websocket.Upgrader

	mu    sync.Mutex
	conns map[*Conn]struct{}

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewServer(resolver SessionResolver, clock services.Clock, frameBudget int, hbTimeout time.Duration) *Server {
	if resolver == nil || clock == nil {
		panic("socket server requires a session resolver and a clock")
	}
	if frameBudget <= 0 || hbTimeout <= 0 {
		panic("socket server misconfigured: frame budget / heartbeat timeout")
	}
	s := &Server{
		resolver:    resolver,
		clock:       clock,
		frameBudget: frameBudget,
		hbTimeout:   hbTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*Conn]struct{}),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

// HandleWS upgrades the request and runs the connection until it closes.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	select {
	case <-s.done:
		ws.Close()
		return
	default:
	}
	c := &Conn{ws: ws}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	log.Printf("socket connected: %s", ws.RemoteAddr())

	s.wg.Add(1)
	go s.readLoop(c)
}

func (s *Server) readLoop(c *Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.ws.Close()
		s.wg.Done()
	}()

	// The budget itself is enforced below so the client gets a structured
	// rejection; the read limit is only a hard bound against giant frames.
	c.ws.SetReadLimit(32 * int64(s.frameBudget))
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if len(data) > s.frameBudget {
			s.closeWithError(c, models.ErrCodePayloadTooLarge,
				fmt.Sprintf("frame exceeds %d bytes", s.frameBudget))
			return
		}
		if !s.handleFrame(c, data) {
			return
		}
	}
}

// handleFrame processes one inbound frame; false means the connection was
// terminated.
func (s *Server) handleFrame(c *Conn, data []byte) bool {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		s.closeWithError(c, models.ErrCodeMalformedFrame, "frame is not a valid envelope")
		return false
	}

	s.mu.Lock()
	authed := c.authed
	s.mu.Unlock()

	if !authed {
		if env.Type != "auth" {
			s.closeWithError(c, models.ErrCodeAuthRequired, "first frame must be auth")
			return false
		}
		return s.handleAuth(c, env.Payload)
	}

	switch env.Type {
	case "auth":
		s.closeWithError(c, models.ErrCodeAlreadyAuthenticated, "connection is already authenticated")
		return false
	case "heartbeat":
		now := s.clock.Now()
		s.mu.Lock()
		c.lastHeartbeat = now
		s.mu.Unlock()
		s.writeFrame(c, "heartbeat_ok", map[string]int64{"nowMs": now.UnixMilli()})
		return true
	default:
		s.closeWithError(c, models.ErrCodeUnknownType, "unknown frame type: "+env.Type)
		return false
	}
}

func (s *Server) handleAuth(c *Conn, payload json.RawMessage) bool {
	var creds authPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &creds); err != nil {
			s.closeWithError(c, models.ErrCodeMalformedFrame, "auth payload is not valid JSON")
			return false
		}
	}

	var (
		session *models.Session
		err     error
	)
	switch {
	case creds.SessionToken != "":
		session, err = s.resolver.GetSession(creds.SessionToken)
	case creds.JWT != "":
		session, err = s.resolver.ResolveJWT(creds.JWT)
	default:
		err = errors.New("auth requires sessionToken or jwt")
	}
	if err != nil || !session.IsValid() {
		s.closeWithError(c, models.ErrCodeInvalidSession, "authentication failed")
		return false
	}

	now := s.clock.Now()
	s.mu.Lock()
	c.session = session
	c.authed = true
	c.lastHeartbeat = now
	s.mu.Unlock()
	log.Printf("socket authenticated: %s as %s", c.ws.RemoteAddr(), session.IdentityKey())

	s.writeFrame(c, "auth_ok", map[string]string{
		"userType": session.UserType,
		"tier":     session.Tier,
		"mode":     session.Mode,
	})
	return true
}

// writeFrame marshals and writes one envelope to a single connection.
func (s *Server) writeFrame(c *Conn, frameType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", frameType, err)
	}
	b, err := json.Marshal(Envelope{Type: frameType, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal %s frame: %w", frameType, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// closeWithError emits the structured error frame first so the client can
// tell a deliberate rejection from a network drop, then closes.
func (s *Server) closeWithError(c *Conn, code, message string) {
	s.writeFrame(c, "error", models.NewServiceError(code, message))
	c.writeMu.Lock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code))
	c.writeMu.Unlock()
	c.ws.Close()
}

// Broadcast serializes the envelope once and writes the same bytes to every
// authenticated open connection. An over-budget payload fails loudly before
// touching any socket.
func (s *Server) Broadcast(event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast payload: %w", err)
	}
	b, err := json.Marshal(Envelope{Type: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast envelope: %w", err)
	}
	if len(b) > s.frameBudget {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(b), s.frameBudget)
	}

	s.mu.Lock()
	targets := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		if c.authed {
			targets = append(targets, c)
		}
	}
	s.mu.Unlock()

	for _, c := range targets {
		c.writeMu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := c.ws.WriteMessage(websocket.TextMessage, b)
		c.writeMu.Unlock()
		if err != nil {
			c.ws.Close()
		}
	}
	return nil
}

func (s *Server) sweepLoop() {
	defer s.wg.Done()
	interval := s.hbTimeout
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweepStale()
		}
	}
}

// sweepStale closes every authenticated connection whose heartbeat is older
// than the timeout, after notifying it.
func (s *Server) sweepStale() {
	now := s.clock.Now()
	s.mu.Lock()
	var stale []*Conn
	for c := range s.conns {
		if c.authed && now.Sub(c.lastHeartbeat) > s.hbTimeout {
			stale = append(stale, c)
		}
	}
	s.mu.Unlock()

	for _, c := range stale {
		log.Printf("socket heartbeat timeout: %s", c.ws.RemoteAddr())
		s.closeWithError(c, models.ErrCodeHeartbeatTimeout, "no heartbeat within timeout")
	}
}

// Online returns the number of authenticated connections.
func (s *Server) Online() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for c := range s.conns {
		if c.authed {
			n++
		}
	}
	return n
}

// Close stops the sweeper, closes every connection and blocks until all
// connection loops have drained.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		targets := make([]*Conn, 0, len(s.conns))
		for c := range s.conns {
			targets = append(targets, c)
		}
		s.mu.Unlock()
		for _, c := range targets {
			c.writeMu.Lock()
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			c.writeMu.Unlock()
			c.ws.Close()
		}
	})
	s.wg.Wait()
}
