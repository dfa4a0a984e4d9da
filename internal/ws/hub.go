package ws

import (
	"context"
	"encoding/json"
	"sync"

	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/pkg/logger"
)

// Envelope is the frame exchanged with feed clients
type Envelope struct {
	Type    string `json:"type"`
	Content any    `json:"content,omitempty"`
}

// Hub fans new messages out to every connected feed subscriber
type Hub struct {
	log    *logger.Logger
	frames chan []byte
	joins  chan *subscriber
	leaves chan *subscriber
	done   chan struct{}

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		log:    log,
		frames: make(chan []byte, 256),
		joins:  make(chan *subscriber),
		leaves: make(chan *subscriber),
		done:   make(chan struct{}),
		subs:   make(map[*subscriber]struct{}),
	}
}

// Run owns the subscriber set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.subs {
				h.drop(s)
			}
			h.mu.Unlock()
			return

		case s := <-h.joins:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("Feed subscriber joined", "client_id", s.id)

		case s := <-h.leaves:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				h.drop(s)
				h.log.Debug("Feed subscriber left", "client_id", s.id)
			}
			h.mu.Unlock()

		case frame := <-h.frames:
			h.mu.Lock()
			for s := range h.subs {
				if !s.enqueue(frame) {
					h.drop(s)
					h.log.Warn("Slow feed subscriber dropped", "client_id", s.id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop forgets s and ends its writer. Caller holds mu.
func (h *Hub) drop(s *subscriber) {
	delete(h.subs, s)
	s.stop()
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// NotifyMessage publishes a newly created message to the feed. It never
// blocks; when the fan-out queue is full the frame is dropped.
func (h *Hub) NotifyMessage(message models.MessageDict) {
	frame, err := json.Marshal(Envelope{Type: "message", Content: message})
	if err != nil {
		h.log.LogError(err, "Encoding feed frame")
		return
	}

	select {
	case h.frames <- frame:
	default:
		h.log.Warn("Feed queue full, frame dropped", "message_id", message.ID)
	}
}
