package apperror

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultHistorySize is how many errors are kept per session.
	DefaultHistorySize = 10
	// DefaultMaxSessions caps how many sessions are tracked at once.
	DefaultMaxSessions = 10000
	// DefaultSessionTTL is how long an idle session's history is kept.
	DefaultSessionTTL = 30 * time.Minute
)

// History keeps the most recent errors per client session in memory.
// Oldest entries are evicted first. Sessions idle for longer than the TTL
// are dropped, and the least recently touched session is evicted once
// the session cap is reached.
type History struct {
	mu          sync.Mutex
	size        int
	maxSessions int
	ttl         time.Duration
	now         func() time.Time

	order    *list.List // front is most recently touched
	sessions map[string]*list.Element
}

type sessionEntry struct {
	id       string
	errors   []*AppError
	lastSeen time.Time
}

func NewHistory(size int) *History {
	return NewHistoryWithLimits(size, DefaultMaxSessions, DefaultSessionTTL)
}

// NewHistoryWithLimits builds a History with explicit bounds. Non-positive
// values fall back to the defaults.
func NewHistoryWithLimits(size, maxSessions int, ttl time.Duration) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &History{
		size:        size,
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
		order:       list.New(),
		sessions:    make(map[string]*list.Element),
	}
}

// Record appends err to the session's history.
func (h *History) Record(sessionID string, err *AppError) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.pruneExpired(now)

	elem, ok := h.sessions[sessionID]
	if !ok {
		elem = h.order.PushFront(&sessionEntry{id: sessionID})
		h.sessions[sessionID] = elem
	} else {
		h.order.MoveToFront(elem)
	}

	entry := elem.Value.(*sessionEntry)
	entry.lastSeen = now
	entry.errors = append(entry.errors, err)
	if len(entry.errors) > h.size {
		entry.errors = append([]*AppError(nil), entry.errors[len(entry.errors)-h.size:]...)
	}

	for h.order.Len() > h.maxSessions {
		h.remove(h.order.Back())
	}
}

// List returns the session's errors, oldest first.
func (h *History) List(sessionID string) []*AppError {
	h.mu.Lock()
	defer h.mu.Unlock()

	elem, ok := h.sessions[sessionID]
	if !ok {
		return []*AppError{}
	}
	entry := elem.Value.(*sessionEntry)
	if h.expired(entry, h.now()) {
		h.remove(elem)
		return []*AppError{}
	}

	out := make([]*AppError, len(entry.errors))
	copy(out, entry.errors)
	return out
}

// Clear drops the session's history.
func (h *History) Clear(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if elem, ok := h.sessions[sessionID]; ok {
		h.remove(elem)
	}
}

// Len reports how many sessions are currently tracked.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.order.Len()
}

// pruneExpired walks from the least recently touched end and stops at the
// first live session.
func (h *History) pruneExpired(now time.Time) {
	for elem := h.order.Back(); elem != nil; elem = h.order.Back() {
		if !h.expired(elem.Value.(*sessionEntry), now) {
			return
		}
		h.remove(elem)
	}
}

func (h *History) expired(entry *sessionEntry, now time.Time) bool {
	return now.Sub(entry.lastSeen) > h.ttl
}

func (h *History) remove(elem *list.Element) {
	h.order.Remove(elem)
	delete(h.sessions, elem.Value.(*sessionEntry).id)
}
