package procurement

// Status represents the lifecycle status of a purchase order
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSubmitted         Status = "submitted"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRejected          Status = "rejected"
	StatusOrdered           Status = "ordered"
	StatusCancelled         Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusPartiallyApproved,
		StatusRejected, StatusOrdered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSubmitted || target == StatusCancelled
	case StatusSubmitted:
		return target == StatusApproved || target == StatusPartiallyApproved ||
			target == StatusRejected || target == StatusCancelled
	case StatusApproved, StatusPartiallyApproved:
		return target == StatusOrdered || target == StatusCancelled
	case StatusOrdered:
		return target == StatusCancelled
	case StatusRejected, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsActive returns true if the order is still in-flight (not terminal)
func (s Status) IsActive() bool {
	return !s.IsTerminal()
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CanFinalize returns true if line decisions can be closed into a PO-level status
func (s Status) CanFinalize() bool {
	return s == StatusSubmitted
}

// LineStatus represents the derived status of a purchase order line
type LineStatus string

const (
	LineStatusPending           LineStatus = "pending"
	LineStatusApproved          LineStatus = "approved"
	LineStatusPartiallyApproved LineStatus = "partially_approved"
	LineStatusBackordered       LineStatus = "backordered"
	LineStatusRejected          LineStatus = "rejected"
	LineStatusCancelled         LineStatus = "cancelled"
)

// IsValid checks if the status is a valid LineStatus
func (s LineStatus) IsValid() bool {
	switch s {
	case LineStatusPending, LineStatusApproved, LineStatusPartiallyApproved,
		LineStatusBackordered, LineStatusRejected, LineStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// IsDecided returns true once a decision has been applied to the line
func (s LineStatus) IsDecided() bool {
	return s != LineStatusPending
}
