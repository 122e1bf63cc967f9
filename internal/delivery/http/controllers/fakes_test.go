package controllers

import (
	"context"
	"log/slog"
	"os"

	"examscheduler/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeSchedulingService implements domain.SchedulingService with canned
// responses and recorded inputs.
type fakeSchedulingService struct {
	checkResult  domain.CheckResult
	checkErr     error
	checkParams  domain.CheckAvailabilityParams
	session      *domain.ExamSession
	createResult domain.CheckResult
	createErr    error
	candidate    domain.SessionCandidate
	updateID     string
	updateErr    error
	cancelErr    error
	deleteErr    error
	cancelledID  string
	views        []domain.SessionView
	listErr      error
	listedDate   domain.CivilDate
	batchResult  *domain.BatchResult
	batchErr     error
	batchAtomic  bool
	genResult    *domain.GenerateResult
	genErr       error
	genReq       domain.GenerateRequest
}

func (f *fakeSchedulingService) CheckAvailability(_ context.Context, params domain.CheckAvailabilityParams) (domain.CheckResult, error) {
	f.checkParams = params
	return f.checkResult, f.checkErr
}

func (f *fakeSchedulingService) ValidateBatch(_ context.Context, candidates []domain.SessionCandidate, atomic bool) (*domain.BatchResult, error) {
	f.batchAtomic = atomic
	if len(candidates) > 0 {
		f.candidate = candidates[0]
	}
	return f.batchResult, f.batchErr
}

func (f *fakeSchedulingService) GenerateSchedule(_ context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	f.genReq = req
	return f.genResult, f.genErr
}

func (f *fakeSchedulingService) CreateSession(_ context.Context, candidate domain.SessionCandidate) (*domain.ExamSession, domain.CheckResult, error) {
	f.candidate = candidate
	return f.session, f.createResult, f.createErr
}

func (f *fakeSchedulingService) UpdateSession(_ context.Context, id string, candidate domain.SessionCandidate) (*domain.ExamSession, domain.CheckResult, error) {
	f.updateID = id
	f.candidate = candidate
	if f.updateErr != nil {
		return nil, domain.CheckResult{}, f.updateErr
	}
	return f.session, f.createResult, nil
}

func (f *fakeSchedulingService) CancelSession(_ context.Context, id string) error {
	f.cancelledID = id
	return f.cancelErr
}

func (f *fakeSchedulingService) DeleteSession(_ context.Context, id string) error {
	f.cancelledID = id
	return f.deleteErr
}

func (f *fakeSchedulingService) ListSessionsByDate(_ context.Context, date domain.CivilDate) ([]domain.SessionView, error) {
	f.listedDate = date
	return f.views, f.listErr
}

// fakeAvailabilityService implements domain.AvailabilityService.
type fakeAvailabilityService struct {
	addRuleErr        error
	rule              *domain.WeeklyRule
	rules             []domain.WeeklyRule
	listRulesErr      error
	removeRuleErr     error
	removedRuleID     string
	addOverrideErr    error
	override          *domain.DateOverride
	overrides         []domain.DateOverride
	listOverridesErr  error
	removeOverrideErr error
	removedOverrideID string
}

func (f *fakeAvailabilityService) AddRule(_ context.Context, rule *domain.WeeklyRule) error {
	if f.addRuleErr != nil {
		return f.addRuleErr
	}
	rule.ID = "rule-1"
	f.rule = rule
	return nil
}

func (f *fakeAvailabilityService) ListRules(_ context.Context, _ string) ([]domain.WeeklyRule, error) {
	return f.rules, f.listRulesErr
}

func (f *fakeAvailabilityService) RemoveRule(_ context.Context, _, ruleID string) error {
	f.removedRuleID = ruleID
	return f.removeRuleErr
}

func (f *fakeAvailabilityService) AddOverride(_ context.Context, override *domain.DateOverride) error {
	if f.addOverrideErr != nil {
		return f.addOverrideErr
	}
	override.ID = "ovr-1"
	f.override = override
	return nil
}

func (f *fakeAvailabilityService) ListOverrides(_ context.Context, _ string) ([]domain.DateOverride, error) {
	return f.overrides, f.listOverridesErr
}

func (f *fakeAvailabilityService) RemoveOverride(_ context.Context, _, overrideID string) error {
	f.removedOverrideID = overrideID
	return f.removeOverrideErr
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	token    string
	user     *domain.User
	err      error
	email    string
	password string
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	f.email = email
	f.password = password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}
