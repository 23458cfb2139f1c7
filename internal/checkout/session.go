// Package checkout holds the pickup-point steps of the shop checkout.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/pargo/pkg/shipper"
)

// ShippingKey is the session key under which the Pargo selection is kept.
const ShippingKey = "pargo"

// ErrSessionNotFound is returned when a session does not exist or expired.
var ErrSessionNotFound = errors.New("checkout session not found")

// Session is the state of one shopper's checkout. It is loaded per request
// and passed explicitly through the checkout pipeline.
type Session struct {
	ID       string                         `json:"id"`
	QuoteID  string                         `json:"quote_id"`
	Shipping map[string]shipper.PickupPoint `json:"shipping,omitempty"`
}

// NewSession starts a session for a quote.
func NewSession(quoteID string) *Session {
	return &Session{ID: uuid.NewString(), QuoteID: quoteID}
}

// SetShipping stores a pickup point selection under key.
func (s *Session) SetShipping(key string, point shipper.PickupPoint) {
	if s.Shipping == nil {
		s.Shipping = make(map[string]shipper.PickupPoint)
	}
	s.Shipping[key] = point
}

// GetShipping returns the selection stored under key.
func (s *Session) GetShipping(key string) (shipper.PickupPoint, bool) {
	point, ok := s.Shipping[key]
	return point, ok
}

// SessionStore persists checkout sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemorySessionStore creates a store whose sessions expire after ttl.
// A zero ttl keeps sessions forever.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

// Get returns a copy of the stored session.
func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}

	s := entry.session
	s.Shipping = make(map[string]shipper.PickupPoint, len(entry.session.Shipping))
	for k, v := range entry.session.Shipping {
		s.Shipping[k] = v
	}
	return &s, nil
}

// Save stores a copy of s and refreshes its expiry.
func (m *MemorySessionStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{session: *s}
	entry.session.Shipping = make(map[string]shipper.PickupPoint, len(s.Shipping))
	for k, v := range s.Shipping {
		entry.session.Shipping[k] = v
	}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.sessions[s.ID] = entry
	return nil
}

// Delete removes a session.
func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

var _ SessionStore = (*MemorySessionStore)(nil)
