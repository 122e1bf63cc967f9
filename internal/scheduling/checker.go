package scheduling

import (
	"fmt"

	"examscheduler/internal/domain"
)

// Checker composes availability profiles and the booking ledger into
// per-resource availability queries. The four checks are independent and a
// Checker may be queried concurrently; it only reads its snapshot.
type Checker struct {
	Profiles map[string]Profile
	Staff    map[string]*domain.Staff
	Rooms    map[string]*domain.Room
	Groups   map[string]*domain.Group
	Ledger   *Ledger
}

// StaffAvailable reports whether the staff member can supervise a session
// at the interval: nominally available per their profile and not already
// booked.
func (c *Checker) StaffAvailable(staffID string, interval domain.TimeInterval, excludeSessionID string) domain.CheckResult {
	if err := interval.Validate(); err != nil {
		return domain.CheckFail(domain.CodeInvalidInterval, err.Error())
	}
	if _, ok := c.Staff[staffID]; !ok {
		return domain.CheckFail(domain.CodeResourceNotFound, fmt.Sprintf("unknown staff %q", staffID))
	}
	if res := c.Profiles[staffID].Resolve(interval); !res.OK {
		return res
	}
	return c.bookingCheck(domain.ResourceStaff, staffID, interval, excludeSessionID,
		"already assigned to another session")
}

// RoomAvailable reports whether the room is free at the interval. Rooms
// have no weekly profile; only bookings matter.
func (c *Checker) RoomAvailable(roomID string, interval domain.TimeInterval, excludeSessionID string) domain.CheckResult {
	if err := interval.Validate(); err != nil {
		return domain.CheckFail(domain.CodeInvalidInterval, err.Error())
	}
	if _, ok := c.Rooms[roomID]; !ok {
		return domain.CheckFail(domain.CodeResourceNotFound, fmt.Sprintf("unknown room %q", roomID))
	}
	return c.bookingCheck(domain.ResourceRoom, roomID, interval, excludeSessionID,
		"room is occupied by another session")
}

// GroupAvailable reports whether the group has no other session at the
// interval.
func (c *Checker) GroupAvailable(groupID string, interval domain.TimeInterval, excludeSessionID string) domain.CheckResult {
	if err := interval.Validate(); err != nil {
		return domain.CheckFail(domain.CodeInvalidInterval, err.Error())
	}
	if _, ok := c.Groups[groupID]; !ok {
		return domain.CheckFail(domain.CodeResourceNotFound, fmt.Sprintf("unknown group %q", groupID))
	}
	return c.bookingCheck(domain.ResourceGroup, groupID, interval, excludeSessionID,
		"group sits another session")
}

// CapacityOK reports whether the combined size of the groups fits the room.
func (c *Checker) CapacityOK(roomID string, groupIDs []string) domain.CheckResult {
	room, ok := c.Rooms[roomID]
	if !ok {
		return domain.CheckFail(domain.CodeResourceNotFound, fmt.Sprintf("unknown room %q", roomID))
	}
	total := 0
	for _, id := range groupIDs {
		group, ok := c.Groups[id]
		if !ok {
			return domain.CheckFail(domain.CodeResourceNotFound, fmt.Sprintf("unknown group %q", id))
		}
		total += group.Size
	}
	if total > room.Capacity {
		return domain.CheckFail(domain.CodeCapacityExceeded,
			fmt.Sprintf("%d students exceed capacity %d of room %s", total, room.Capacity, room.Name))
	}
	return domain.CheckOK()
}

// Check dispatches a resource availability query by kind.
func (c *Checker) Check(params domain.CheckAvailabilityParams) domain.CheckResult {
	switch params.Kind {
	case domain.ResourceStaff:
		return c.StaffAvailable(params.ResourceID, params.Interval, params.ExcludeSessionID)
	case domain.ResourceRoom:
		return c.RoomAvailable(params.ResourceID, params.Interval, params.ExcludeSessionID)
	case domain.ResourceGroup:
		return c.GroupAvailable(params.ResourceID, params.Interval, params.ExcludeSessionID)
	default:
		return domain.CheckFail(domain.CodeResourceNotFound, fmt.Sprintf("unknown resource kind %q", params.Kind))
	}
}

// ValidateCandidate runs the full conflict check set for one candidate
// session: capacity, room, every group, every supervisor. The first failing
// check is returned. excludeSessionID skips one ledger session when editing.
func (c *Checker) ValidateCandidate(cand domain.SessionCandidate, excludeSessionID string) domain.CheckResult {
	if res := c.CapacityOK(cand.RoomID, cand.GroupIDs); !res.OK {
		return res
	}
	if res := c.RoomAvailable(cand.RoomID, cand.Interval, excludeSessionID); !res.OK {
		return res
	}
	for _, groupID := range cand.GroupIDs {
		if res := c.GroupAvailable(groupID, cand.Interval, excludeSessionID); !res.OK {
			return res
		}
	}
	for _, staffID := range cand.SupervisorIDs {
		if res := c.StaffAvailable(staffID, cand.Interval, excludeSessionID); !res.OK {
			return res
		}
	}
	return domain.CheckOK()
}

func (c *Checker) bookingCheck(kind domain.ResourceKind, id string, interval domain.TimeInterval, excludeSessionID, what string) domain.CheckResult {
	if c.Ledger == nil {
		return domain.CheckOK()
	}
	if b := c.Ledger.ConflictFor(kind, id, interval, excludeSessionID); b != nil {
		res := domain.CheckFail(domain.CodeBookingConflict,
			fmt.Sprintf("%s (%s)", what, b.Interval))
		res.ConflictingSessionID = b.SessionID
		return res
	}
	return domain.CheckOK()
}
