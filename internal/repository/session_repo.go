package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"statsdash/internal/model"
)

// SessionRepository keeps dashboard sessions in memory. Nothing outlives the process.
type SessionRepository interface {
	Create() model.Session
	Get(id uuid.UUID) (model.Session, error)
	BeginSubmission(id uuid.UUID) error
	EndSubmission(id uuid.UUID, result *model.Dashboard) error
	Delete(id uuid.UUID) bool
	ExpireIdle(now time.Time, ttl time.Duration) int
	Count() int
}

type sessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Session
	now      func() time.Time
}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{
		sessions: make(map[uuid.UUID]*model.Session),
		now:      time.Now,
	}
}

func (r *sessionRepository) Create() model.Session {
	now := r.now()
	s := &model.Session{
		ID:        uuid.New(),
		CreatedAt: now,
		LastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return *s
}

// Get returns a snapshot of the session and marks it as seen
func (r *sessionRepository) Get(id uuid.UUID) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return model.Session{}, ErrSessionNotFound
	}
	s.LastSeen = r.now()
	return *s, nil
}

// BeginSubmission claims the session's single request slot. The previous result is
// discarded as soon as a new token is accepted.
func (r *sessionRepository) BeginSubmission(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.InFlight {
		return ErrSubmissionInFlight
	}
	s.InFlight = true
	s.Result = nil
	s.LastSeen = r.now()
	return nil
}

// EndSubmission releases the request slot. A nil result records a failed submission.
func (r *sessionRepository) EndSubmission(id uuid.UUID, result *model.Dashboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.InFlight = false
	s.Result = result
	s.LastSeen = r.now()
	return nil
}

func (r *sessionRepository) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// ExpireIdle drops sessions not seen within ttl. Sessions with a request in flight are kept.
func (r *sessionRepository) ExpireIdle(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := 0
	for id, s := range r.sessions {
		if s.InFlight {
			continue
		}
		if now.Sub(s.LastSeen) > ttl {
			delete(r.sessions, id)
			expired++
		}
	}
	return expired
}

func (r *sessionRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
