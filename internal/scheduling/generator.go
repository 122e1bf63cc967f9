package scheduling

import (
	"context"
	"fmt"
	"sort"

	"examscheduler/internal/domain"
)

// GenerateInput carries the resource snapshot and parameters for one
// automatic generation run. The generator never mutates the snapshot; it
// works on a private ledger copy and returns assignments for the caller to
// commit once the run completes.
type GenerateInput struct {
	From            domain.CivilDate
	To              domain.CivilDate
	DailySlots      []domain.SlotTemplate
	IncludeWeekends bool
	// MinSupervisors is the target supervisor count per session; at least
	// one available supervisor is always required. Zero means one.
	MinSupervisors int
	Intent         domain.IntentKind

	Subjects []*domain.Subject
	// Requirements maps a subject ID to the group IDs needing it.
	Requirements map[string][]string
	Staff        []*domain.Staff
	Rooms        []*domain.Room
	Groups       map[string]*domain.Group
	Profiles     map[string]Profile
	Existing     []*domain.ExamSession

	NewID func() string
}

// Generate produces a conflict-free assignment of exam sessions using a
// greedy, most-constrained-first strategy: subjects needing the most groups
// are placed first into the earliest slot where the smallest sufficient
// room, every required group, and at least one supervisor are free.
// Subjects that cannot be placed are reported, never dropped. Cancelling
// the context returns the partial result alongside ctx.Err(); identical
// inputs always produce identical output.
func Generate(ctx context.Context, in GenerateInput) (*domain.GenerateResult, error) {
	if in.From.IsZero() || in.To.IsZero() || in.To.Before(in.From) {
		return nil, fmt.Errorf("%w: invalid date range %s..%s", domain.ErrInvalidInput, in.From, in.To)
	}
	if len(in.DailySlots) == 0 {
		return nil, fmt.Errorf("%w: at least one daily slot is required", domain.ErrInvalidInput)
	}
	for _, slot := range in.DailySlots {
		if slot.Start >= slot.End {
			return nil, fmt.Errorf("%w: slot %s-%s is empty", domain.ErrInvalidInput, slot.Start, slot.End)
		}
	}
	intent := in.Intent
	if intent == "" {
		intent = domain.IntentMainExam
	}
	if !intent.Valid() {
		return nil, fmt.Errorf("%w: unknown intent kind %q", domain.ErrInvalidInput, intent)
	}
	newID := in.NewID
	if newID == nil {
		newID = func() string { return "" }
	}
	minSupervisors := in.MinSupervisors
	if minSupervisors < 1 {
		minSupervisors = 1
	}

	slots := expandSlots(in.From, in.To, in.DailySlots, in.IncludeWeekends)
	ledger := NewLedger(in.Existing)
	checker := &Checker{
		Profiles: in.Profiles,
		Staff:    indexStaff(in.Staff),
		Rooms:    indexRooms(in.Rooms),
		Groups:   in.Groups,
		Ledger:   ledger,
	}

	roomsBySize := make([]*domain.Room, len(in.Rooms))
	copy(roomsBySize, in.Rooms)
	sort.Slice(roomsBySize, func(i, j int) bool {
		if roomsBySize[i].Capacity != roomsBySize[j].Capacity {
			return roomsBySize[i].Capacity < roomsBySize[j].Capacity
		}
		return roomsBySize[i].ID < roomsBySize[j].ID
	})

	ordered := orderSubjects(in.Subjects, in.Requirements)
	result := &domain.GenerateResult{}

	for idx, subject := range ordered {
		if err := ctx.Err(); err != nil {
			for _, rest := range ordered[idx:] {
				result.Unscheduled = append(result.Unscheduled, domain.UnscheduledSubject{
					SubjectID: rest.ID,
					Reason:    "generation cancelled before subject was considered",
				})
			}
			return result, err
		}

		groupIDs := in.Requirements[subject.ID]
		if len(groupIDs) == 0 {
			continue
		}

		session, reason := placeSubject(subject, groupIDs, slots, roomsBySize, in.Staff, checker, minSupervisors, ledger)
		if session == nil {
			result.Unscheduled = append(result.Unscheduled, domain.UnscheduledSubject{
				SubjectID: subject.ID,
				Reason:    reason,
			})
			continue
		}
		session.ID = newID()
		session.Intent = intent
		ledger.Add(session)
		result.Scheduled = append(result.Scheduled, session)
	}

	return result, nil
}

// placeSubject scans candidate slots chronologically and returns the first
// conflict-free session, or nil with the reason from the first slot that
// partially failed.
func placeSubject(subject *domain.Subject, groupIDs []string, slots []domain.TimeInterval, roomsBySize []*domain.Room, staff []*domain.Staff, checker *Checker, minSupervisors int, ledger *Ledger) (*domain.ExamSession, string) {
	totalSize := 0
	for _, id := range groupIDs {
		group, ok := checker.Groups[id]
		if !ok {
			return nil, fmt.Sprintf("unknown group %q required by subject", id)
		}
		totalSize += group.Size
	}

	var room *domain.Room
	for _, r := range roomsBySize {
		if r.Capacity >= totalSize {
			room = r
			break
		}
	}
	if room == nil {
		return nil, fmt.Sprintf("no room with capacity for %d students", totalSize)
	}
	if len(slots) == 0 {
		return nil, "no candidate time slots in the requested range"
	}

	firstFailure := ""
	note := func(reason string) {
		if firstFailure == "" {
			firstFailure = reason
		}
	}

	for _, interval := range slots {
		if res := checker.RoomAvailable(room.ID, interval, ""); !res.OK {
			note(fmt.Sprintf("%s: room %s: %s", interval, room.Name, res.Reason))
			continue
		}
		groupsFree := true
		for _, groupID := range groupIDs {
			if res := checker.GroupAvailable(groupID, interval, ""); !res.OK {
				note(fmt.Sprintf("%s: group %s: %s", interval, groupID, res.Reason))
				groupsFree = false
				break
			}
		}
		if !groupsFree {
			continue
		}

		supervisors := pickSupervisors(staff, interval, checker, ledger, minSupervisors)
		if len(supervisors) == 0 {
			note(fmt.Sprintf("%s: no supervisor available", interval))
			continue
		}

		return &domain.ExamSession{
			SubjectID:     subject.ID,
			Interval:      interval,
			RoomID:        room.ID,
			GroupIDs:      append([]string(nil), groupIDs...),
			SupervisorIDs: supervisors,
		}, ""
	}

	if firstFailure == "" {
		firstFailure = "no candidate slot satisfied all constraints"
	}
	return nil, firstFailure
}

// pickSupervisors returns up to minSupervisors available staff IDs ordered
// by ascending weekly load, so assignments spread evenly across the week.
func pickSupervisors(staff []*domain.Staff, interval domain.TimeInterval, checker *Checker, ledger *Ledger, minSupervisors int) []string {
	type loaded struct {
		id   string
		load int
	}
	available := make([]loaded, 0, len(staff))
	for _, s := range staff {
		if res := checker.StaffAvailable(s.ID, interval, ""); res.OK {
			available = append(available, loaded{id: s.ID, load: ledger.SupervisorLoad(s.ID, interval.Date)})
		}
	}
	sort.Slice(available, func(i, j int) bool {
		if available[i].load != available[j].load {
			return available[i].load < available[j].load
		}
		return available[i].id < available[j].id
	})
	count := minSupervisors
	if count > len(available) {
		count = len(available)
	}
	picked := make([]string, 0, count)
	for _, s := range available[:count] {
		picked = append(picked, s.id)
	}
	return picked
}

// expandSlots crosses the date range with the daily slot template in
// chronological order.
func expandSlots(from, to domain.CivilDate, daily []domain.SlotTemplate, includeWeekends bool) []domain.TimeInterval {
	ordered := make([]domain.SlotTemplate, len(daily))
	copy(ordered, daily)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var slots []domain.TimeInterval
	for d := from; !d.After(to); d = d.AddDays(1) {
		if d.IsWeekend() && !includeWeekends {
			continue
		}
		for _, slot := range ordered {
			slots = append(slots, domain.NewTimeInterval(d, slot.Start, slot.End))
		}
	}
	return slots
}

// orderSubjects sorts subjects by descending constraint weight (number of
// groups requiring them), breaking ties by ID for deterministic output.
func orderSubjects(subjects []*domain.Subject, requirements map[string][]string) []*domain.Subject {
	ordered := make([]*domain.Subject, len(subjects))
	copy(ordered, subjects)
	sort.Slice(ordered, func(i, j int) bool {
		wi, wj := len(requirements[ordered[i].ID]), len(requirements[ordered[j].ID])
		if wi != wj {
			return wi > wj
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

func indexStaff(staff []*domain.Staff) map[string]*domain.Staff {
	m := make(map[string]*domain.Staff, len(staff))
	for _, s := range staff {
		m[s.ID] = s
	}
	return m
}

func indexRooms(rooms []*domain.Room) map[string]*domain.Room {
	m := make(map[string]*domain.Room, len(rooms))
	for _, r := range rooms {
		m[r.ID] = r
	}
	return m
}
