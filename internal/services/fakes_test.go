package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"examscheduler/internal/domain"
)

// fakeSessionRepo is an in-memory SessionRepository for tests.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.ExamSession

	createErr      error // returned by Create/CreateBatch when set
	conflictOnce   bool  // first Create fails with ErrBookingConflict, then clears
	createdBatches int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.ExamSession)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictOnce {
		f.conflictOnce = false
		return domain.ErrBookingConflict
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) CreateBatch(ctx context.Context, sessions []*domain.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	f.createdBatches++
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSessionRepo) Update(ctx context.Context, s *domain.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.ID]; !ok {
		return domain.ErrNotFound
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Cancelled = true
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) ListByDate(ctx context.Context, date domain.CivilDate) ([]*domain.ExamSession, error) {
	return f.ListInRange(ctx, date, date)
}

func (f *fakeSessionRepo) ListInRange(ctx context.Context, from, to domain.CivilDate) ([]*domain.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ExamSession
	for _, s := range f.sessions {
		if s.Cancelled {
			continue
		}
		d := s.Interval.Date
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// fakeStaffRepo is an in-memory StaffRepository for tests.
type fakeStaffRepo struct {
	staff     map[string]*domain.Staff
	rules     []domain.WeeklyRule
	overrides []domain.DateOverride
	nextID    int
}

func newFakeStaffRepo(staff ...*domain.Staff) *fakeStaffRepo {
	f := &fakeStaffRepo{staff: make(map[string]*domain.Staff), nextID: 1}
	for _, s := range staff {
		f.staff[s.ID] = s
	}
	return f
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	if s, ok := f.staff[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStaffRepo) List(ctx context.Context) ([]*domain.Staff, error) {
	out := make([]*domain.Staff, 0, len(f.staff))
	for _, s := range f.staff {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStaffRepo) CreateRule(ctx context.Context, rule *domain.WeeklyRule) error {
	rule.ID = nextFakeID(&f.nextID, "rule")
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeStaffRepo) ListRules(ctx context.Context, staffID string) ([]domain.WeeklyRule, error) {
	var out []domain.WeeklyRule
	for _, r := range f.rules {
		if r.StaffID == staffID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStaffRepo) ListAllRules(ctx context.Context) ([]domain.WeeklyRule, error) {
	return append([]domain.WeeklyRule(nil), f.rules...), nil
}

func (f *fakeStaffRepo) DeleteRule(ctx context.Context, id string) error {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStaffRepo) CreateOverride(ctx context.Context, o *domain.DateOverride) error {
	o.ID = nextFakeID(&f.nextID, "ovr")
	f.overrides = append(f.overrides, *o)
	return nil
}

func (f *fakeStaffRepo) ListOverrides(ctx context.Context, staffID string) ([]domain.DateOverride, error) {
	var out []domain.DateOverride
	for _, o := range f.overrides {
		if o.StaffID == staffID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStaffRepo) ListOverridesInRange(ctx context.Context, from, to domain.CivilDate) ([]domain.DateOverride, error) {
	var out []domain.DateOverride
	for _, o := range f.overrides {
		if o.Date.Before(from) || o.Date.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStaffRepo) DeleteOverride(ctx context.Context, id string) error {
	for i, o := range f.overrides {
		if o.ID == id {
			f.overrides = append(f.overrides[:i], f.overrides[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func nextFakeID(n *int, prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, *n)
	*n++
	return id
}

// fakeCatalogRepo is an in-memory CatalogRepository for tests.
type fakeCatalogRepo struct {
	rooms        []*domain.Room
	groups       []*domain.Group
	subjects     []*domain.Subject
	requirements map[string][]string
}

func (f *fakeCatalogRepo) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	for _, r := range f.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalogRepo) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	return f.rooms, nil
}

func (f *fakeCatalogRepo) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	for _, g := range f.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalogRepo) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return f.groups, nil
}

func (f *fakeCatalogRepo) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	for _, s := range f.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalogRepo) ListSubjects(ctx context.Context) ([]*domain.Subject, error) {
	return f.subjects, nil
}

func (f *fakeCatalogRepo) ListRequirements(ctx context.Context) (map[string][]string, error) {
	return f.requirements, nil
}

// fakeNotifier records assignment notices instead of sending mail.
type fakeNotifier struct {
	notices []*domain.AssignmentNoticeData
	err     error
}

func (f *fakeNotifier) SendAssignmentNotice(ctx context.Context, data *domain.AssignmentNoticeData) error {
	if f.err != nil {
		return f.err
	}
	f.notices = append(f.notices, data)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
