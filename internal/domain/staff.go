package domain

import (
	"context"
	"fmt"
	"time"
)

// Staff represents a supervising staff member.
type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStaff returns a new Staff member with the given fields. ID is typically set by the repository on create.
func NewStaff(name, email string, createdAt, updatedAt time.Time) *Staff {
	return &Staff{
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// WeeklyRule is a recurring weekly availability window for one staff member.
type WeeklyRule struct {
	ID      string       `json:"id"`
	StaffID string       `json:"staff_id"`
	Day     time.Weekday `json:"day"`
	Start   TimeOfDay    `json:"start"`
	End     TimeOfDay    `json:"end"`
}

// Validate reports whether the rule window is well formed.
func (r WeeklyRule) Validate() error {
	if r.Start >= r.End {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidInput, r.Start, r.End)
	}
	return nil
}

// DateOverride replaces the weekly pattern for a specific date and window.
// Available=false blocks the window; Available=true grants it on its own,
// independent of any weekly rule.
type DateOverride struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	Date      CivilDate `json:"date"`
	Start     TimeOfDay `json:"start"`
	End       TimeOfDay `json:"end"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason"`
}

// Interval returns the override's window as a TimeInterval.
func (o DateOverride) Interval() TimeInterval {
	return TimeInterval{Date: o.Date, Start: o.Start, End: o.End}
}

// StaffRepository defines the interface for staff and availability storage.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)

	CreateRule(ctx context.Context, rule *WeeklyRule) error
	ListRules(ctx context.Context, staffID string) ([]WeeklyRule, error)
	ListAllRules(ctx context.Context) ([]WeeklyRule, error)
	DeleteRule(ctx context.Context, id string) error

	CreateOverride(ctx context.Context, override *DateOverride) error
	ListOverrides(ctx context.Context, staffID string) ([]DateOverride, error)
	ListOverridesInRange(ctx context.Context, from, to CivilDate) ([]DateOverride, error)
	DeleteOverride(ctx context.Context, id string) error
}

// AvailabilityService defines the business logic for managing staff
// availability profiles.
type AvailabilityService interface {
	AddRule(ctx context.Context, rule *WeeklyRule) error
	ListRules(ctx context.Context, staffID string) ([]WeeklyRule, error)
	RemoveRule(ctx context.Context, staffID, ruleID string) error
	AddOverride(ctx context.Context, override *DateOverride) error
	ListOverrides(ctx context.Context, staffID string) ([]DateOverride, error)
	RemoveOverride(ctx context.Context, staffID, overrideID string) error
}
