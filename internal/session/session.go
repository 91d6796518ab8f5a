// Package session holds the state of one uploaded workbook and the store
// that keys it for the HTTP surface.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/valuation-dashboard/internal/statements"
	"github.com/user/valuation-dashboard/internal/valuation"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Context is everything computed from one upload. It is passed explicitly
// to every calculation; nothing is kept in package state.
type Context struct {
	ID          string                   `json:"id"`
	Filename    string                   `json:"filename"`
	Company     string                   `json:"company,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Statements  *statements.Statements   `json:"-"`
	Ratios      *valuation.Ratios        `json:"ratios"`
	Assumptions valuation.Assumptions    `json:"assumptions"`
	DCF         *valuation.DCFResult     `json:"dcf,omitempty"`
	EPS         []valuation.EPSRow       `json:"eps,omitempty"`
	Verdict     *valuation.VerdictResult `json:"verdict,omitempty"`
}

// New creates a context with a fresh id.
func New(filename string, st *statements.Statements) *Context {
	now := time.Now()
	return &Context{
		ID:         uuid.NewString(),
		Filename:   filename,
		CreatedAt:  now,
		UpdatedAt:  now,
		Statements: st,
	}
}

// SetAssumptions replaces the assumptions and clears results derived from
// the old ones.
func (c *Context) SetAssumptions(a valuation.Assumptions) {
	c.Assumptions = a
	c.DCF = nil
	c.EPS = nil
	c.Verdict = nil
	c.UpdatedAt = time.Now()
}

// Store keeps contexts in memory by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Context
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Context)}
}

// Put adds or replaces a context.
func (s *Store) Put(c *Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.ID] = c
}

// Get returns a snapshot of the context for id. Later updates do not show
// through it.
func (s *Store) Get(id string) (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.snapshot(), nil
}

// Update runs fn on the context under the write lock and returns a snapshot
// of the result.
func (s *Store) Update(id string, fn func(*Context) error) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(c); err != nil {
		return c.snapshot(), err
	}
	c.UpdatedAt = time.Now()
	return c.snapshot(), nil
}

// snapshot copies the context. Results and assumptions are replaced
// wholesale on update, never mutated in place, so a shallow copy is stable.
func (c *Context) snapshot() *Context {
	cp := *c
	return &cp
}

// Delete removes a context. Deleting an unknown id reports ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
