package domain

import (
	"context"
	"fmt"
	"time"
)

// IntentKind is the category of assessment a session represents. It is
// orthogonal to the derived lifecycle status and never changes with time.
type IntentKind string

const (
	IntentSupervisedTest IntentKind = "supervised_test"
	IntentLabExam        IntentKind = "lab_exam"
	IntentMainExam       IntentKind = "main_exam"
	IntentRetakeExam     IntentKind = "retake_exam"
)

// Valid reports whether k is a known intent kind.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentSupervisedTest, IntentLabExam, IntentMainExam, IntentRetakeExam:
		return true
	}
	return false
}

// SessionStatus is the time-derived lifecycle state of a session. Only
// cancelled is ever stored; the rest are recomputed on every read.
type SessionStatus string

const (
	StatusScheduled SessionStatus = "scheduled"
	StatusOngoing   SessionStatus = "ongoing"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// ExamSession represents a timed exam session binding a subject, a room,
// one or more groups, and one or more supervisors.
type ExamSession struct {
	ID            string       `json:"id"`
	SubjectID     string       `json:"subject_id"`
	Interval      TimeInterval `json:"interval"`
	RoomID        string       `json:"room_id"`
	GroupIDs      []string     `json:"group_ids"`
	SupervisorIDs []string     `json:"supervisor_ids"`
	Intent        IntentKind   `json:"intent"`
	Cancelled     bool         `json:"cancelled"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Validate checks the structural invariants of a session: a well formed
// interval, a room, at least one group, at least one supervisor, and a known
// intent kind.
func (s *ExamSession) Validate() error {
	if err := s.Interval.Validate(); err != nil {
		return err
	}
	if s.SubjectID == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if s.RoomID == "" {
		return fmt.Errorf("%w: room is required", ErrInvalidInput)
	}
	if len(s.GroupIDs) == 0 {
		return fmt.Errorf("%w: at least one group is required", ErrInvalidInput)
	}
	if len(s.SupervisorIDs) == 0 {
		return fmt.Errorf("%w: at least one supervisor is required", ErrInvalidInput)
	}
	if !s.Intent.Valid() {
		return fmt.Errorf("%w: unknown intent kind %q", ErrInvalidInput, s.Intent)
	}
	return nil
}

// SessionView pairs a session with its lifecycle status resolved at read time.
type SessionView struct {
	Session *ExamSession  `json:"session"`
	Status  SessionStatus `json:"status"`
}

// SessionCandidate is a not-yet-persisted session submitted for validation.
type SessionCandidate struct {
	SubjectID     string       `json:"subject_id"`
	Interval      TimeInterval `json:"interval"`
	RoomID        string       `json:"room_id"`
	GroupIDs      []string     `json:"group_ids"`
	SupervisorIDs []string     `json:"supervisor_ids"`
	Intent        IntentKind   `json:"intent"`
}

// Session materializes the candidate into an ExamSession without an ID.
func (c SessionCandidate) Session() *ExamSession {
	return &ExamSession{
		SubjectID:     c.SubjectID,
		Interval:      c.Interval,
		RoomID:        c.RoomID,
		GroupIDs:      append([]string(nil), c.GroupIDs...),
		SupervisorIDs: append([]string(nil), c.SupervisorIDs...),
		Intent:        c.Intent,
	}
}

// SessionRepository defines the interface for exam session storage. List
// methods return only non-cancelled sessions; cancelled sessions never
// participate in conflict detection.
type SessionRepository interface {
	// Create inserts the session after re-checking, inside a serializable
	// transaction, that none of its resources is booked at an overlapping
	// interval. Returns ErrBookingConflict if a concurrent commit won.
	Create(ctx context.Context, session *ExamSession) error
	// CreateBatch inserts all sessions in one transaction with the same
	// conflict re-check; no session is written if any check fails.
	CreateBatch(ctx context.Context, sessions []*ExamSession) error
	GetByID(ctx context.Context, id string) (*ExamSession, error)
	Update(ctx context.Context, session *ExamSession) error
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListByDate(ctx context.Context, date CivilDate) ([]*ExamSession, error)
	ListInRange(ctx context.Context, from, to CivilDate) ([]*ExamSession, error)
}
