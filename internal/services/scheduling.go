package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"examscheduler/internal/domain"
	"examscheduler/internal/scheduling"
)

type schedulingService struct {
	sessionRepo    domain.SessionRepository
	staffRepo      domain.StaffRepository
	catalogRepo    domain.CatalogRepository
	notifier       domain.NotificationService
	idGenerator    func() string
	now            func() time.Time
	contextTimeout time.Duration
}

// NewSchedulingService wires the scheduling engine to its repositories.
// notifier may be nil to disable supervisor notifications; idGenerator and
// now default to uuid.NewString and time.Now.
func NewSchedulingService(
	sessionRepo domain.SessionRepository,
	staffRepo domain.StaffRepository,
	catalogRepo domain.CatalogRepository,
	notifier domain.NotificationService,
	idGenerator func() string,
	now func() time.Time,
	timeout time.Duration,
) domain.SchedulingService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &schedulingService{
		sessionRepo:    sessionRepo,
		staffRepo:      staffRepo,
		catalogRepo:    catalogRepo,
		notifier:       notifier,
		idGenerator:    idGenerator,
		now:            now,
		contextTimeout: timeout,
	}
}

// snapshot is the request-scoped state the engine operates on. It is built
// from repository reads once per operation; the engine itself never touches
// the database.
type snapshot struct {
	checker  *scheduling.Checker
	staff    []*domain.Staff
	rooms    []*domain.Room
	existing []*domain.ExamSession
}

func (s *schedulingService) buildSnapshot(ctx context.Context, from, to domain.CivilDate) (*snapshot, error) {
	existing, err := s.sessionRepo.ListInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	staff, err := s.staffRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	rules, err := s.staffRepo.ListAllRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list weekly rules: %w", err)
	}
	overrides, err := s.staffRepo.ListOverridesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list date overrides: %w", err)
	}
	rooms, err := s.catalogRepo.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	groups, err := s.catalogRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	profiles := make(map[string]scheduling.Profile, len(staff))
	for _, r := range rules {
		p := profiles[r.StaffID]
		p.Rules = append(p.Rules, r)
		profiles[r.StaffID] = p
	}
	for _, o := range overrides {
		p := profiles[o.StaffID]
		p.Overrides = append(p.Overrides, o)
		profiles[o.StaffID] = p
	}

	staffByID := make(map[string]*domain.Staff, len(staff))
	for _, st := range staff {
		staffByID[st.ID] = st
	}
	roomsByID := make(map[string]*domain.Room, len(rooms))
	for _, r := range rooms {
		roomsByID[r.ID] = r
	}
	groupsByID := make(map[string]*domain.Group, len(groups))
	for _, g := range groups {
		groupsByID[g.ID] = g
	}

	return &snapshot{
		existing: existing,
		checker: &scheduling.Checker{
			Profiles: profiles,
			Staff:    staffByID,
			Rooms:    roomsByID,
			Groups:   groupsByID,
			Ledger:   scheduling.NewLedger(existing),
		},
		staff: staff,
		rooms: rooms,
	}, nil
}

// CheckAvailability answers a single resource/interval query against the
// current ledger and availability profiles.
func (s *schedulingService) CheckAvailability(ctx context.Context, params domain.CheckAvailabilityParams) (domain.CheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := params.Interval.Validate(); err != nil {
		return domain.CheckFail(domain.CodeInvalidInterval, err.Error()), nil
	}
	if !params.Kind.Valid() {
		return domain.CheckResult{}, fmt.Errorf("%w: unknown resource kind %q", domain.ErrInvalidInput, params.Kind)
	}

	snap, err := s.buildSnapshot(ctx, params.Interval.Date, params.Interval.Date)
	if err != nil {
		return domain.CheckResult{}, err
	}
	return snap.checker.Check(params), nil
}

// ValidateBatch validates candidate sessions and commits the accepted ones.
// In atomic mode all candidates are committed in one transaction or none
// are; otherwise each accepted candidate is committed independently and
// commit-time races demote items to the rejected list.
func (s *schedulingService) ValidateBatch(ctx context.Context, candidates []domain.SessionCandidate, atomic bool) (*domain.BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(candidates) == 0 {
		return &domain.BatchResult{}, nil
	}

	from, to := candidates[0].Interval.Date, candidates[0].Interval.Date
	for _, c := range candidates[1:] {
		if c.Interval.Date.Before(from) {
			from = c.Interval.Date
		}
		if c.Interval.Date.After(to) {
			to = c.Interval.Date
		}
	}

	snap, err := s.buildSnapshot(ctx, from, to)
	if err != nil {
		return nil, err
	}

	result := scheduling.ValidateBatch(candidates, atomic, snap.checker)

	createdAt := s.now()
	for _, session := range result.Accepted {
		session.ID = s.idGenerator()
		session.CreatedAt = createdAt
		session.UpdatedAt = createdAt
	}

	// Map accepted sessions back to their candidate indices so commit-time
	// failures can be reported per item.
	rejectedIdx := make(map[int]struct{}, len(result.Rejected))
	for _, item := range result.Rejected {
		rejectedIdx[item.Index] = struct{}{}
	}
	acceptedIdx := make([]int, 0, len(result.Accepted))
	for i := range candidates {
		if _, bad := rejectedIdx[i]; !bad {
			acceptedIdx = append(acceptedIdx, i)
		}
	}

	if atomic {
		if len(result.Accepted) == 0 {
			return result, nil
		}
		if err := s.sessionRepo.CreateBatch(ctx, result.Accepted); err != nil {
			if errors.Is(err, domain.ErrBookingConflict) {
				failed := &domain.BatchResult{}
				for _, idx := range acceptedIdx {
					failed.Rejected = append(failed.Rejected, domain.BatchItemResult{
						Index:     idx,
						Candidate: candidates[idx],
						Result:    domain.CheckFail(domain.CodeBookingConflict, "a concurrent booking claimed a resource before commit"),
					})
				}
				return failed, nil
			}
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		return result, nil
	}

	committed := result.Accepted[:0]
	for pos, session := range result.Accepted {
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			if errors.Is(err, domain.ErrBookingConflict) {
				result.Rejected = append(result.Rejected, domain.BatchItemResult{
					Index:     acceptedIdx[pos],
					Candidate: candidates[acceptedIdx[pos]],
					Result:    domain.CheckFail(domain.CodeBookingConflict, "a concurrent booking claimed a resource before commit"),
				})
				continue
			}
			return nil, fmt.Errorf("commit session: %w", err)
		}
		committed = append(committed, session)
	}
	result.Accepted = committed
	return result, nil
}

// CreateSession validates and persists a single session. A failed check is
// returned as a CheckResult, not an error.
func (s *schedulingService) CreateSession(ctx context.Context, candidate domain.SessionCandidate) (*domain.ExamSession, domain.CheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session := candidate.Session()
	if err := session.Validate(); err != nil {
		return nil, domain.CheckFail(domain.CodeInvalidInterval, err.Error()), nil
	}

	snap, err := s.buildSnapshot(ctx, candidate.Interval.Date, candidate.Interval.Date)
	if err != nil {
		return nil, domain.CheckResult{}, err
	}
	if res := snap.checker.ValidateCandidate(candidate, ""); !res.OK {
		return nil, res, nil
	}

	now := s.now()
	session.ID = s.idGenerator()
	session.CreatedAt = now
	session.UpdatedAt = now

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, domain.ErrBookingConflict) {
			return nil, domain.CheckFail(domain.CodeBookingConflict, "a concurrent booking claimed a resource before commit"), nil
		}
		return nil, domain.CheckResult{}, fmt.Errorf("create session: %w", err)
	}
	return session, domain.CheckOK(), nil
}

// UpdateSession applies an edit to an existing session after re-running the
// conflict checks with the session itself excluded from the ledger.
func (s *schedulingService) UpdateSession(ctx context.Context, id string, candidate domain.SessionCandidate) (*domain.ExamSession, domain.CheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.CheckResult{}, domain.ErrNotFound
		}
		return nil, domain.CheckResult{}, fmt.Errorf("get session: %w", err)
	}

	updated := candidate.Session()
	if err := updated.Validate(); err != nil {
		return nil, domain.CheckFail(domain.CodeInvalidInterval, err.Error()), nil
	}

	snap, err := s.buildSnapshot(ctx, candidate.Interval.Date, candidate.Interval.Date)
	if err != nil {
		return nil, domain.CheckResult{}, err
	}
	if res := snap.checker.ValidateCandidate(candidate, id); !res.OK {
		return nil, res, nil
	}

	updated.ID = existing.ID
	updated.Cancelled = existing.Cancelled
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	if err := s.sessionRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, domain.ErrBookingConflict) {
			return nil, domain.CheckFail(domain.CodeBookingConflict, "a concurrent booking claimed a resource before commit"), nil
		}
		return nil, domain.CheckResult{}, fmt.Errorf("update session: %w", err)
	}
	return updated, domain.CheckOK(), nil
}

// CancelSession marks the session cancelled. Cancelled is terminal; the
// session stops conflicting and its status is never recomputed.
func (s *schedulingService) CancelSession(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.sessionRepo.Cancel(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("cancel session: %w", err)
	}
	return nil
}

// DeleteSession removes the session entirely.
func (s *schedulingService) DeleteSession(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessionsByDate returns the day's sessions with their lifecycle status
// resolved against the current clock.
func (s *schedulingService) ListSessionsByDate(ctx context.Context, date domain.CivilDate) ([]domain.SessionView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.sessionRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	now := s.now()
	views := make([]domain.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, scheduling.ResolveView(session, now))
	}
	return views, nil
}

// GenerateSchedule runs the automatic generator over a repository snapshot
// and commits the finished assignments. If ctx is cancelled mid-run the
// partial result is returned alongside ctx.Err() and nothing is committed.
// Assignments that lose a race against live data at commit time are moved
// to the unscheduled list instead of failing the run.
func (s *schedulingService) GenerateSchedule(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	snap, err := s.buildSnapshot(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}
	subjects, err := s.catalogRepo.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	requirements, err := s.catalogRepo.ListRequirements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}

	result, err := scheduling.Generate(ctx, scheduling.GenerateInput{
		From:            req.From,
		To:              req.To,
		DailySlots:      req.DailySlots,
		IncludeWeekends: req.IncludeWeekends,
		MinSupervisors:  req.MinSupervisors,
		Intent:          req.Intent,
		Subjects:        subjects,
		Requirements:    requirements,
		Staff:           snap.staff,
		Rooms:           snap.rooms,
		Groups:          snap.checker.Groups,
		Profiles:        snap.checker.Profiles,
		Existing:        snap.existing,
		NewID:           s.idGenerator,
	})
	if err != nil {
		return result, err
	}

	createdAt := s.now()
	committed := make([]*domain.ExamSession, 0, len(result.Scheduled))
	for _, session := range result.Scheduled {
		session.CreatedAt = createdAt
		session.UpdatedAt = createdAt
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			if errors.Is(err, domain.ErrBookingConflict) {
				result.Unscheduled = append(result.Unscheduled, domain.UnscheduledSubject{
					SubjectID: session.SubjectID,
					Reason:    "a concurrent booking claimed a resource before commit",
				})
				continue
			}
			return nil, fmt.Errorf("commit generated session: %w", err)
		}
		committed = append(committed, session)
	}
	result.Scheduled = committed

	s.notifySupervisors(ctx, snap, subjects, result.Scheduled)
	return result, nil
}

// notifySupervisors sends each assigned supervisor one summary of their new
// sessions. Notification failures are logged and never fail the run.
func (s *schedulingService) notifySupervisors(ctx context.Context, snap *snapshot, subjects []*domain.Subject, scheduled []*domain.ExamSession) {
	if s.notifier == nil || len(scheduled) == 0 {
		return
	}

	subjectNames := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		subjectNames[sub.ID] = sub.Name
	}

	perStaff := make(map[string][]domain.AssignmentNoticeSession)
	for _, session := range scheduled {
		room := session.RoomID
		if r, ok := snap.checker.Rooms[session.RoomID]; ok {
			room = r.Name
		}
		subject := session.SubjectID
		if name, ok := subjectNames[session.SubjectID]; ok {
			subject = name
		}
		for _, staffID := range session.SupervisorIDs {
			perStaff[staffID] = append(perStaff[staffID], domain.AssignmentNoticeSession{
				Subject:  subject,
				Room:     room,
				Interval: session.Interval.String(),
			})
		}
	}

	for staffID, assigned := range perStaff {
		st, ok := snap.checker.Staff[staffID]
		if !ok || st.Email == "" {
			continue
		}
		data := &domain.AssignmentNoticeData{
			Name:     st.Name,
			Email:    st.Email,
			Sessions: assigned,
		}
		if err := s.notifier.SendAssignmentNotice(ctx, data); err != nil {
			log.Printf("[SCHEDULER] failed to notify %s: %v", st.Email, err)
		}
	}
}
