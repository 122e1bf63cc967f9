package domain

import (
	"context"
	"time"
)

// CheckAvailabilityParams identifies a single resource/interval query.
type CheckAvailabilityParams struct {
	Kind             ResourceKind `json:"kind"`
	ResourceID       string       `json:"resource_id"`
	Interval         TimeInterval `json:"interval"`
	ExcludeSessionID string       `json:"exclude_session_id,omitempty"`
}

// BatchItemResult reports the validation outcome for one batch candidate.
type BatchItemResult struct {
	Index     int              `json:"index"`
	Candidate SessionCandidate `json:"candidate"`
	Result    CheckResult      `json:"result"`
}

// BatchResult aggregates the outcome of validating (and, when requested,
// committing) a batch of candidate sessions.
type BatchResult struct {
	Accepted []*ExamSession    `json:"accepted"`
	Rejected []BatchItemResult `json:"rejected"`
}

// AcceptedCount returns the number of accepted candidates.
func (r *BatchResult) AcceptedCount() int { return len(r.Accepted) }

// RejectedCount returns the number of rejected candidates.
func (r *BatchResult) RejectedCount() int { return len(r.Rejected) }

// SlotTemplate is one daily time slot used when expanding a generation
// date range.
type SlotTemplate struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// GenerateRequest describes an automatic schedule generation run.
type GenerateRequest struct {
	From            CivilDate      `json:"from"`
	To              CivilDate      `json:"to"`
	DailySlots      []SlotTemplate `json:"daily_slots"`
	IncludeWeekends bool           `json:"include_weekends"`
	MinSupervisors  int            `json:"min_supervisors"`
	Intent          IntentKind     `json:"intent"`
}

// UnscheduledSubject reports a subject the generator could not place.
type UnscheduledSubject struct {
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason"`
}

// GenerateResult is the outcome of a generation run. Scheduled sessions are
// committed only when the run finishes without cancellation.
type GenerateResult struct {
	Scheduled   []*ExamSession       `json:"scheduled"`
	Unscheduled []UnscheduledSubject `json:"unscheduled"`
}

// SchedulingService defines the operations the core exposes to the
// surrounding system: pre-validation of selections, batch validation,
// status resolution on read, and automatic generation.
type SchedulingService interface {
	CheckAvailability(ctx context.Context, params CheckAvailabilityParams) (CheckResult, error)
	ValidateBatch(ctx context.Context, candidates []SessionCandidate, atomic bool) (*BatchResult, error)
	GenerateSchedule(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	CreateSession(ctx context.Context, candidate SessionCandidate) (*ExamSession, CheckResult, error)
	UpdateSession(ctx context.Context, id string, candidate SessionCandidate) (*ExamSession, CheckResult, error)
	CancelSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	ListSessionsByDate(ctx context.Context, date CivilDate) ([]SessionView, error)
}

// Mailer sends a single email message. Send honors ctx cancellation and
// deadlines on the underlying delivery call.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template with data.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// AssignmentNoticeData is the template payload for a supervisor assignment
// notification sent after a generation run commits.
type AssignmentNoticeData struct {
	Name     string
	Email    string
	Sessions []AssignmentNoticeSession
}

// AssignmentNoticeSession is one assigned session in an assignment notice.
type AssignmentNoticeSession struct {
	Subject  string
	Room     string
	Interval string
}

// NotificationService sends post-commit notifications to supervisors.
type NotificationService interface {
	SendAssignmentNotice(ctx context.Context, data *AssignmentNoticeData) error
}

// Clock abstracts wall-clock reads so status derivation stays deterministic
// in tests.
type Clock func() time.Time
