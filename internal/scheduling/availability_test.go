package scheduling

import (
	"testing"
	"time"

	"examscheduler/internal/domain"

	"github.com/stretchr/testify/assert"
)

// 2025-03-11 is a Tuesday.
var tuesday = domain.NewCivilDate(2025, time.March, 11)

func interval(date domain.CivilDate, startH, startM, endH, endM int) domain.TimeInterval {
	return domain.NewTimeInterval(date, domain.NewTimeOfDay(startH, startM), domain.NewTimeOfDay(endH, endM))
}

func weeklyRule(day time.Weekday, startH, endH int) domain.WeeklyRule {
	return domain.WeeklyRule{
		ID:    "rule-1",
		Day:   day,
		Start: domain.NewTimeOfDay(startH, 0),
		End:   domain.NewTimeOfDay(endH, 0),
	}
}

func TestProfileResolve(t *testing.T) {
	tests := []struct {
		name       string
		profile    Profile
		interval   domain.TimeInterval
		wantOK     bool
		wantCode   domain.CheckCode
		wantReason string
	}{
		{
			name:     "no configuration at all",
			profile:  Profile{},
			interval: interval(tuesday, 9, 0, 11, 0),
			wantOK:   false,
			wantCode: domain.CodeAvailabilityDenied,
			// a day with no rules must name the missing configuration
			wantReason: "no availability configured for Tuesday",
		},
		{
			name:     "weekly rule fully contains interval",
			profile:  Profile{Rules: []domain.WeeklyRule{weeklyRule(time.Tuesday, 9, 12)}},
			interval: interval(tuesday, 9, 0, 11, 0),
			wantOK:   true,
		},
		{
			name:     "partial overlap with rule is insufficient",
			profile:  Profile{Rules: []domain.WeeklyRule{weeklyRule(time.Tuesday, 9, 12)}},
			interval: interval(tuesday, 11, 30, 13, 0),
			wantOK:   false,
			wantCode: domain.CodeAvailabilityDenied,
		},
		{
			name:     "rule on another day does not apply",
			profile:  Profile{Rules: []domain.WeeklyRule{weeklyRule(time.Wednesday, 9, 12)}},
			interval: interval(tuesday, 9, 0, 11, 0),
			wantOK:   false,
			wantCode: domain.CodeAvailabilityDenied,
		},
		{
			name: "any one of several rules may contain the interval",
			profile: Profile{Rules: []domain.WeeklyRule{
				weeklyRule(time.Tuesday, 8, 10),
				weeklyRule(time.Tuesday, 13, 17),
			}},
			interval: interval(tuesday, 14, 0, 16, 0),
			wantOK:   true,
		},
		{
			name: "blocking override beats an approving weekly rule",
			profile: Profile{
				Rules: []domain.WeeklyRule{weeklyRule(time.Tuesday, 9, 12)},
				Overrides: []domain.DateOverride{{
					Date:      tuesday,
					Start:     domain.NewTimeOfDay(10, 0),
					End:       domain.NewTimeOfDay(11, 0),
					Available: false,
					Reason:    "department meeting",
				}},
			},
			interval:   interval(tuesday, 9, 0, 11, 0),
			wantOK:     false,
			wantCode:   domain.CodeAvailabilityDenied,
			wantReason: "department meeting",
		},
		{
			name: "blocking override outside the interval is ignored",
			profile: Profile{
				Rules: []domain.WeeklyRule{weeklyRule(time.Tuesday, 9, 12)},
				Overrides: []domain.DateOverride{{
					Date:      tuesday,
					Start:     domain.NewTimeOfDay(14, 0),
					End:       domain.NewTimeOfDay(15, 0),
					Available: false,
				}},
			},
			interval: interval(tuesday, 9, 0, 11, 0),
			wantOK:   true,
		},
		{
			name: "granting override on a day without weekly rules",
			profile: Profile{
				Overrides: []domain.DateOverride{{
					Date:      tuesday,
					Start:     domain.NewTimeOfDay(9, 0),
					End:       domain.NewTimeOfDay(17, 0),
					Available: true,
					Reason:    "exam week cover",
				}},
			},
			interval: interval(tuesday, 10, 0, 12, 0),
			wantOK:   true,
		},
		{
			name: "granting override does not extend a weekly rule",
			profile: Profile{
				Rules: []domain.WeeklyRule{weeklyRule(time.Tuesday, 9, 12)},
				Overrides: []domain.DateOverride{{
					Date:      tuesday,
					Start:     domain.NewTimeOfDay(12, 0),
					End:       domain.NewTimeOfDay(13, 0),
					Available: true,
				}},
			},
			// 11:00-13:00 is neither inside the rule nor inside the
			// override; the two windows do not merge.
			interval: interval(tuesday, 11, 0, 13, 0),
			wantOK:   false,
			wantCode: domain.CodeAvailabilityDenied,
		},
		{
			name: "override on a different date is ignored",
			profile: Profile{
				Overrides: []domain.DateOverride{{
					Date:      tuesday.AddDays(1),
					Start:     domain.NewTimeOfDay(9, 0),
					End:       domain.NewTimeOfDay(17, 0),
					Available: true,
				}},
			},
			interval: interval(tuesday, 10, 0, 12, 0),
			wantOK:   false,
			wantCode: domain.CodeAvailabilityDenied,
		},
		{
			name:     "inverted interval rejected before any lookup",
			profile:  Profile{Rules: []domain.WeeklyRule{weeklyRule(time.Tuesday, 9, 12)}},
			interval: interval(tuesday, 11, 0, 9, 0),
			wantOK:   false,
			wantCode: domain.CodeInvalidInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.profile.Resolve(tt.interval)
			assert.Equal(t, tt.wantOK, res.OK)
			if !tt.wantOK {
				assert.Equal(t, tt.wantCode, res.Code)
			}
			if tt.wantReason != "" {
				assert.Contains(t, res.Reason, tt.wantReason)
			}
		})
	}
}

func TestProfileResolveBlockingOverrideBeatsGrant(t *testing.T) {
	profile := Profile{
		Overrides: []domain.DateOverride{
			{Date: tuesday, Start: domain.NewTimeOfDay(9, 0), End: domain.NewTimeOfDay(17, 0), Available: true},
			{Date: tuesday, Start: domain.NewTimeOfDay(10, 0), End: domain.NewTimeOfDay(11, 0), Available: false, Reason: "sick leave"},
		},
	}
	res := profile.Resolve(interval(tuesday, 9, 0, 12, 0))
	assert.False(t, res.OK)
	assert.Equal(t, domain.CodeAvailabilityDenied, res.Code)
	assert.Equal(t, "sick leave", res.Reason)
}
