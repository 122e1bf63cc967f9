package scheduling

import (
	"time"

	"examscheduler/internal/domain"
)

// ResolveStatus derives a session's lifecycle state from the wall clock.
// Cancelled is sticky and never recomputed. Otherwise the civil date and
// time of now are compared against the session interval: before it the
// session is scheduled, after it completed, inside it ongoing. The function
// is pure; callers supply now explicitly and re-resolve on every read.
func ResolveStatus(interval domain.TimeInterval, cancelled bool, now time.Time) domain.SessionStatus {
	if cancelled {
		return domain.StatusCancelled
	}
	nowDate := domain.CivilDateOf(now)
	if nowDate.Before(interval.Date) {
		return domain.StatusScheduled
	}
	if nowDate.After(interval.Date) {
		return domain.StatusCompleted
	}
	nowTime := domain.TimeOfDayOf(now)
	switch {
	case nowTime < interval.Start:
		return domain.StatusScheduled
	case nowTime > interval.End:
		return domain.StatusCompleted
	default:
		return domain.StatusOngoing
	}
}

// ResolveView pairs a session with its status resolved at now.
func ResolveView(session *domain.ExamSession, now time.Time) domain.SessionView {
	return domain.SessionView{
		Session: session,
		Status:  ResolveStatus(session.Interval, session.Cancelled, now),
	}
}
