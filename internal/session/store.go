// Package session keeps analysis sessions in memory. A session's snapshot is
// replaced wholesale on every change; snapshots handed out are never
// modified afterwards.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/finsight/internal/analysis"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/google/uuid"
)

// State is the lifecycle position of a session.
type State string

const (
	StateIdle      State = "IDLE"
	StateAnalyzing State = "ANALYZING"
	StateSuccess   State = "SUCCESS"
	StateError     State = "ERROR"
)

// Session is a copy of one session's state at the time it was read.
type Session struct {
	ID        string                 `json:"id"`
	State     State                  `json:"state"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	JobID     string                 `json:"jobId,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Store is safe for concurrent use. All writes are serialised by one mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session), now: time.Now}
}

// Create starts a new idle session.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{ID: uuid.NewString(), State: StateIdle, CreatedAt: now, UpdatedAt: now}
	s.sessions[sess.ID] = sess
	return *sess
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("Get: %s: %w", id, domain.ErrSessionNotFound)
	}
	return *sess, nil
}

// List returns all sessions, oldest first.
func (s *Store) List() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// BeginAnalysis moves a session to ANALYZING on behalf of jobID. The previous
// result is cleared. Only jobID may later complete or fail the analysis.
func (s *Store) BeginAnalysis(id, jobID string) (Session, error) {
	return s.update(id, "BeginAnalysis", func(sess *Session) error {
		if sess.State == StateAnalyzing {
			return domain.ErrAnalysisInProgress
		}
		sess.State = StateAnalyzing
		sess.Result = nil
		sess.Error = ""
		sess.JobID = jobID
		return nil
	})
}

// Complete stores the first snapshot of an analysis. It returns
// ErrStaleAnalysis if the session was reset or rerun since jobID began.
func (s *Store) Complete(id, jobID string, result *domain.AnalysisResult) error {
	_, err := s.update(id, "Complete", func(sess *Session) error {
		if err := checkActiveJob(sess, jobID); err != nil {
			return err
		}
		sess.State = StateSuccess
		sess.Result = result
		sess.Error = ""
		sess.JobID = ""
		return nil
	})
	return err
}

// Fail records a failed analysis with a user-facing message. Like Complete it
// only applies to the job that is currently running.
func (s *Store) Fail(id, jobID, message string) error {
	_, err := s.update(id, "Fail", func(sess *Session) error {
		if err := checkActiveJob(sess, jobID); err != nil {
			return err
		}
		sess.State = StateError
		sess.Result = nil
		sess.Error = message
		sess.JobID = ""
		return nil
	})
	return err
}

func checkActiveJob(sess *Session, jobID string) error {
	if sess.State != StateAnalyzing || sess.JobID != jobID {
		return fmt.Errorf("job %s: %w", jobID, domain.ErrStaleAnalysis)
	}
	return nil
}

// ApplyEdit validates txn, replaces the transaction at index and installs the
// recomputed snapshot.
func (s *Store) ApplyEdit(id string, index int, txn domain.Transaction) (Session, error) {
	if err := analysis.ValidateTransaction(txn); err != nil {
		return Session{}, fmt.Errorf("ApplyEdit: %w", err)
	}
	return s.update(id, "ApplyEdit", func(sess *Session) error {
		if sess.Result == nil {
			return domain.ErrNoAnalysis
		}
		next, err := analysis.ReplaceTransaction(sess.Result, index, txn)
		if err != nil {
			return err
		}
		sess.Result = next
		return nil
	})
}

// Reset returns a session to IDLE and drops its result.
func (s *Store) Reset(id string) (Session, error) {
	return s.update(id, "Reset", func(sess *Session) error {
		sess.State = StateIdle
		sess.Result = nil
		sess.Error = ""
		sess.JobID = ""
		return nil
	})
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("Delete: %s: %w", id, domain.ErrSessionNotFound)
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) update(id, op string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%s: %s: %w", op, id, domain.ErrSessionNotFound)
	}

	next := *sess
	if err := fn(&next); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	next.UpdatedAt = s.now()
	s.sessions[id] = &next
	return next, nil
}
