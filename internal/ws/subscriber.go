package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"chatonline-world/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	// a peer silent for this long is considered gone
	idleTimeout  = time.Minute
	pingInterval = idleTimeout * 9 / 10
	maxFrameSize = 4 << 10
	outboxSize   = 64
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1 << 10,
	WriteBufferSize:  1 << 10,
	// the feed is public and read-only
	CheckOrigin: func(*http.Request) bool { return true },
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	hub  *Hub

	mu      sync.Mutex
	outbox  chan []byte
	stopped bool
}

// enqueue hands a frame to the writer. It reports false when the
// subscriber is stopped or its outbox is full.
func (s *subscriber) enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	select {
	case s.outbox <- frame:
		return true
	default:
		return false
	}
}

func (s *subscriber) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.outbox)
	}
}

// ServeWs upgrades the request and subscribes the connection to the feed
func (h *Hub) ServeWs(c *gin.Context) {
	log := logger.FromGin(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered
		log.Warn("Feed upgrade failed", "error", err.Error())
		return
	}

	s := &subscriber{
		id:     uuid.NewString(),
		conn:   conn,
		hub:    h,
		outbox: make(chan []byte, outboxSize),
	}
	select {
	case h.joins <- s:
	case <-h.done:
		conn.Close()
		return
	}
	log.Info("Feed subscriber connected", "client_id", s.id)

	go s.write()
	go s.read()
}

// read answers pings and notices when the peer goes away
func (s *subscriber) read() {
	defer func() {
		select {
		case s.hub.leaves <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxFrameSize)
	extend := func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	_ = extend("")
	s.conn.SetPongHandler(extend)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.hub.log.Warn("Feed connection lost", "client_id", s.id, "error", err.Error())
			}
			return
		}

		var in Envelope
		if json.Unmarshal(data, &in) == nil && in.Type == "ping" {
			pong, _ := json.Marshal(Envelope{Type: "pong"})
			s.enqueue(pong)
		}
	}
}

// write drains the outbox and keeps the connection alive with pings
func (s *subscriber) write() {
	pings := time.NewTicker(pingInterval)
	defer func() {
		pings.Stop()
		s.conn.Close()
	}()

	send := func(kind int, data []byte) error {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return s.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case frame, ok := <-s.outbox:
			if !ok {
				_ = send(websocket.CloseMessage, nil)
				return
			}
			if send(websocket.TextMessage, frame) != nil {
				return
			}
		case <-pings.C:
			if send(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}
