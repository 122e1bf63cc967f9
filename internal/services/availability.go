package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examscheduler/internal/domain"
)

type availabilityService struct {
	staffRepo      domain.StaffRepository
	contextTimeout time.Duration
}

// NewAvailabilityService creates an AvailabilityService backed by the staff
// repository.
func NewAvailabilityService(staffRepo domain.StaffRepository, timeout time.Duration) domain.AvailabilityService {
	return &availabilityService{staffRepo: staffRepo, contextTimeout: timeout}
}

// AddRule validates and stores a recurring weekly availability window.
func (s *availabilityService) AddRule(ctx context.Context, rule *domain.WeeklyRule) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := rule.Validate(); err != nil {
		return err
	}
	if rule.Day < time.Sunday || rule.Day > time.Saturday {
		return fmt.Errorf("%w: invalid weekday %d", domain.ErrInvalidInput, rule.Day)
	}
	if _, err := s.staffRepo.GetByID(ctx, rule.StaffID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get staff: %w", err)
	}
	if err := s.staffRepo.CreateRule(ctx, rule); err != nil {
		return fmt.Errorf("create weekly rule: %w", err)
	}
	return nil
}

func (s *availabilityService) ListRules(ctx context.Context, staffID string) ([]domain.WeeklyRule, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	rules, err := s.staffRepo.ListRules(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("list weekly rules: %w", err)
	}
	return rules, nil
}

// RemoveRule deletes a weekly rule after confirming it belongs to the staff
// member named in the request.
func (s *availabilityService) RemoveRule(ctx context.Context, staffID, ruleID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rules, err := s.staffRepo.ListRules(ctx, staffID)
	if err != nil {
		return fmt.Errorf("list weekly rules: %w", err)
	}
	for _, r := range rules {
		if r.ID == ruleID {
			if err := s.staffRepo.DeleteRule(ctx, ruleID); err != nil {
				return fmt.Errorf("delete weekly rule: %w", err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

// AddOverride validates and stores a date-specific availability override.
// Blocking overrides should carry a reason; it is surfaced verbatim in
// denial results.
func (s *availabilityService) AddOverride(ctx context.Context, override *domain.DateOverride) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if override.Date.IsZero() {
		return fmt.Errorf("%w: override date is required", domain.ErrInvalidInput)
	}
	if err := override.Interval().Validate(); err != nil {
		return err
	}
	if _, err := s.staffRepo.GetByID(ctx, override.StaffID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get staff: %w", err)
	}
	if err := s.staffRepo.CreateOverride(ctx, override); err != nil {
		return fmt.Errorf("create date override: %w", err)
	}
	return nil
}

func (s *availabilityService) ListOverrides(ctx context.Context, staffID string) ([]domain.DateOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	overrides, err := s.staffRepo.ListOverrides(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("list date overrides: %w", err)
	}
	return overrides, nil
}

func (s *availabilityService) RemoveOverride(ctx context.Context, staffID, overrideID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	overrides, err := s.staffRepo.ListOverrides(ctx, staffID)
	if err != nil {
		return fmt.Errorf("list date overrides: %w", err)
	}
	for _, o := range overrides {
		if o.ID == overrideID {
			if err := s.staffRepo.DeleteOverride(ctx, overrideID); err != nil {
				return fmt.Errorf("delete date override: %w", err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}
