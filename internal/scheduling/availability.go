// Package scheduling implements the availability resolution, conflict
// detection, status derivation, batch validation, and automatic generation
// engine. Every component operates on externally supplied snapshots, holds
// no mutable shared state, and is safe for concurrent use.
package scheduling

import (
	"fmt"
	"sort"
	"strings"

	"examscheduler/internal/domain"
)

// Profile is one staff member's availability inputs: recurring weekly rules
// plus date-specific overrides.
type Profile struct {
	Rules     []domain.WeeklyRule
	Overrides []domain.DateOverride
}

// Resolve answers whether the staff member is nominally free for the given
// interval, before any booking check. Precedence: a blocking override
// overlapping the interval denies; a granting override containing the
// interval allows on its own; otherwise a weekly rule for the interval's
// weekday must fully contain the interval. Overrides never extend a weekly
// rule's bounds.
func (p Profile) Resolve(interval domain.TimeInterval) domain.CheckResult {
	if err := interval.Validate(); err != nil {
		return domain.CheckFail(domain.CodeInvalidInterval, err.Error())
	}

	granted := false
	for _, o := range p.Overrides {
		if o.Date != interval.Date {
			continue
		}
		ov := o.Interval()
		if !o.Available && ov.Overlaps(interval) {
			reason := o.Reason
			if reason == "" {
				reason = fmt.Sprintf("unavailable on %s between %s and %s", o.Date, o.Start, o.End)
			}
			return domain.CheckFail(domain.CodeAvailabilityDenied, reason)
		}
		if o.Available && ov.Contains(interval) {
			granted = true
		}
	}
	if granted {
		return domain.CheckOK()
	}

	day := interval.Date.Weekday()
	var dayRules []domain.WeeklyRule
	for _, r := range p.Rules {
		if r.Day == day {
			dayRules = append(dayRules, r)
		}
	}
	if len(dayRules) == 0 {
		return domain.CheckFail(domain.CodeAvailabilityDenied,
			fmt.Sprintf("no availability configured for %s", day))
	}

	bounds := make([]string, 0, len(dayRules))
	for _, r := range dayRules {
		if r.Start <= interval.Start && interval.End <= r.End {
			return domain.CheckOK()
		}
		bounds = append(bounds, fmt.Sprintf("%s-%s", r.Start, r.End))
	}
	sort.Strings(bounds)
	return domain.CheckFail(domain.CodeAvailabilityDenied,
		fmt.Sprintf("outside availability on %s (%s)", day, strings.Join(bounds, ", ")))
}
