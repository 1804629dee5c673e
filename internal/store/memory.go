package store

import (
	"sync"
	"time"
)

// Message is one transcript entry of a conversation.
type Message struct {
	Role    string
	Content string
}

// MemoryStore keeps short-lived per-conversation context for the agent: a
// bounded transcript window (fed to the small-talk model) and the most
// recently offered option keys so a follow-up selection can be resolved.
type MemoryStore struct {
	mu            sync.RWMutex
	transcripts   map[string][]Message
	maxMessages   int
	lastOffersBy  map[string]offerCache
	pendingRideBy map[string]pendingRide
}

func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{
		transcripts:   make(map[string][]Message),
		maxMessages:   maxMessages,
		lastOffersBy:  make(map[string]offerCache),
		pendingRideBy: make(map[string]pendingRide),
	}
}

func (m *MemoryStore) Append(conversationID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts[conversationID] = append(m.transcripts[conversationID], msg)
	m.trimLocked(conversationID)
}

func (m *MemoryStore) Get(conversationID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.transcripts[conversationID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Clear drops all context for a conversation, called when it ends.
func (m *MemoryStore) Clear(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transcripts, conversationID)
	delete(m.lastOffersBy, conversationID)
	delete(m.pendingRideBy, conversationID)
}

func (m *MemoryStore) trimLocked(conversationID string) {
	if m.maxMessages <= 0 {
		return
	}
	msgs := m.transcripts[conversationID]
	if len(msgs) > m.maxMessages {
		m.transcripts[conversationID] = msgs[len(msgs)-m.maxMessages:]
	}
}

// Cache TTLs. Offers and pending rides do not outlive a short pause in the
// conversation.
var (
	offersTTL      = 7 * time.Minute
	pendingRideTTL = 7 * time.Minute
)

// Offer pairs an option key with its display title.
type Offer struct {
	Key   string
	Title string
}

type offerCache struct {
	Offers    []Offer
	UpdatedAt time.Time
}

type pendingRide struct {
	Passenger string
	Pickup    string
	UpdatedAt time.Time
}

// SetLastOffers caches the options most recently shown to a conversation.
func (m *MemoryStore) SetLastOffers(conversationID string, offers []Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOffersBy[conversationID] = offerCache{Offers: append([]Offer(nil), offers...), UpdatedAt: time.Now()}
}

// GetLastOffers returns the cached options if within TTL.
func (m *MemoryStore) GetLastOffers(conversationID string) ([]Offer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cache, ok := m.lastOffersBy[conversationID]
	if !ok {
		return nil, false
	}
	if time.Since(cache.UpdatedAt) > offersTTL {
		delete(m.lastOffersBy, conversationID)
		return nil, false
	}
	return append([]Offer(nil), cache.Offers...), true
}

// SetPendingRide remembers who and where to pick up while permissions and
// confirmation are being collected.
func (m *MemoryStore) SetPendingRide(conversationID, passenger, pickup string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingRideBy[conversationID] = pendingRide{Passenger: passenger, Pickup: pickup, UpdatedAt: time.Now()}
}

// GetPendingRide returns the pending ride if within TTL.
func (m *MemoryStore) GetPendingRide(conversationID string) (passenger, pickup string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, present := m.pendingRideBy[conversationID]
	if !present {
		return "", "", false
	}
	if time.Since(p.UpdatedAt) > pendingRideTTL {
		delete(m.pendingRideBy, conversationID)
		return "", "", false
	}
	return p.Passenger, p.Pickup, true
}

// ClearPendingRide removes any pending ride for the conversation.
func (m *MemoryStore) ClearPendingRide(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pendingRideBy, conversationID)
}
