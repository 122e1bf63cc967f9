package scheduling

import "examscheduler/internal/domain"

// Booking identifies an existing session occupying a resource.
type Booking struct {
	SessionID string
	Interval  domain.TimeInterval
}

// Ledger is a read model over committed, non-cancelled sessions used to
// detect resource double-booking. It does not observe later writes; callers
// build a fresh ledger per request from a repository snapshot.
type Ledger struct {
	sessions []*domain.ExamSession
}

// NewLedger builds a ledger from a session snapshot, dropping cancelled
// sessions.
func NewLedger(sessions []*domain.ExamSession) *Ledger {
	kept := make([]*domain.ExamSession, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && !s.Cancelled {
			kept = append(kept, s)
		}
	}
	return &Ledger{sessions: kept}
}

// Add records an additional session. Used by the generator on its private
// working copy; request-scoped ledgers are never shared across goroutines
// once Add is called.
func (l *Ledger) Add(s *domain.ExamSession) {
	if s == nil || s.Cancelled {
		return
	}
	l.sessions = append(l.sessions, s)
}

// ConflictFor returns the first booking of the given resource overlapping
// the interval, or nil. excludeSessionID skips one session, used when
// editing it.
func (l *Ledger) ConflictFor(kind domain.ResourceKind, resourceID string, interval domain.TimeInterval, excludeSessionID string) *Booking {
	for _, s := range l.sessions {
		if excludeSessionID != "" && s.ID == excludeSessionID {
			continue
		}
		if !s.Interval.Overlaps(interval) {
			continue
		}
		if sessionUsesResource(s, kind, resourceID) {
			return &Booking{SessionID: s.ID, Interval: s.Interval}
		}
	}
	return nil
}

// SupervisorLoad counts the sessions supervised by the staff member during
// the calendar week containing date (Monday through Sunday).
func (l *Ledger) SupervisorLoad(staffID string, date domain.CivilDate) int {
	weekStart := startOfWeek(date)
	weekEnd := weekStart.AddDays(7)
	load := 0
	for _, s := range l.sessions {
		d := s.Interval.Date
		if d.Before(weekStart) || !d.Before(weekEnd) {
			continue
		}
		if sessionUsesResource(s, domain.ResourceStaff, staffID) {
			load++
		}
	}
	return load
}

func sessionUsesResource(s *domain.ExamSession, kind domain.ResourceKind, resourceID string) bool {
	switch kind {
	case domain.ResourceStaff:
		for _, id := range s.SupervisorIDs {
			if id == resourceID {
				return true
			}
		}
	case domain.ResourceRoom:
		return s.RoomID == resourceID
	case domain.ResourceGroup:
		for _, id := range s.GroupIDs {
			if id == resourceID {
				return true
			}
		}
	}
	return false
}

func startOfWeek(d domain.CivilDate) domain.CivilDate {
	// Monday starts the week; Weekday() has Sunday == 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
