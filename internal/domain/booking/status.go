package booking

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// open reports whether the appointment still occupies its slot.
func open(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPending {
		return ErrConflict("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !open(current) {
		return ErrConflict("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if !open(current) {
		return ErrConflict("invalid_state")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if !open(current) {
		return ErrConflict("invalid_state")
	}
	return nil
}

func CanReschedule(current Status) error {
	if !open(current) {
		return ErrConflict("invalid_state")
	}
	return nil
}

// InitialStatus is policy-dependent: branches that auto-confirm skip pending.
func InitialStatus(autoConfirm bool) Status {
	if autoConfirm {
		return StatusConfirmed
	}
	return StatusPending
}

// IsOpen is the exported form used by lifecycle handlers to detect stale
// triggers: a fired event for a non-open booking is a no-op.
func IsOpen(s Status) bool {
	return open(s)
}
