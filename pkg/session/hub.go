package session

import (
	"sync"

	"github.com/aretw0/progressforms/pkg/domain"
)

const subscriberBuffer = 16

type hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan *domain.StateDiff
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]chan *domain.StateDiff)}
}

func (h *hub) subscribe(sessionID string) (<-chan *domain.StateDiff, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan *domain.StateDiff, subscriberBuffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int]chan *domain.StateDiff)
	}
	h.subs[sessionID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[sessionID][id]; ok {
				delete(h.subs[sessionID], id)
				if len(h.subs[sessionID]) == 0 {
					delete(h.subs, sessionID)
				}
				close(c)
			}
		})
	}
}

func (h *hub) publish(sessionID string, diff *domain.StateDiff) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[sessionID] {
		select {
		case ch <- diff:
		default:
		}
	}
}

func (h *hub) close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}
