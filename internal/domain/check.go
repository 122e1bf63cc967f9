package domain

// ResourceKind identifies the category of a scarce scheduling resource.
type ResourceKind string

const (
	ResourceStaff ResourceKind = "staff"
	ResourceRoom  ResourceKind = "room"
	ResourceGroup ResourceKind = "group"
)

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceStaff, ResourceRoom, ResourceGroup:
		return true
	}
	return false
}

// CheckCode classifies why an availability check failed. These are expected,
// user-actionable outcomes and are returned as values, never as Go errors.
type CheckCode string

const (
	CodeInvalidInterval    CheckCode = "invalid_interval"
	CodeResourceNotFound   CheckCode = "resource_not_found"
	CodeAvailabilityDenied CheckCode = "availability_denied"
	CodeBookingConflict    CheckCode = "booking_conflict"
	CodeCapacityExceeded   CheckCode = "capacity_exceeded"
	CodeBatchConflict      CheckCode = "batch_conflict"
)

// CheckResult is the structured outcome of a single availability or
// capacity check.
type CheckResult struct {
	OK     bool      `json:"ok"`
	Code   CheckCode `json:"code,omitempty"`
	Reason string    `json:"reason,omitempty"`
	// ConflictingSessionID is set when Code is booking_conflict.
	ConflictingSessionID string `json:"conflicting_session_id,omitempty"`
}

// CheckOK returns a passing check result.
func CheckOK() CheckResult {
	return CheckResult{OK: true}
}

// CheckFail returns a failing check result with the given code and reason.
func CheckFail(code CheckCode, reason string) CheckResult {
	return CheckResult{OK: false, Code: code, Reason: reason}
}
