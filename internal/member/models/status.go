package models

// Status is the membership lifecycle state.
type Status string

const (
	// StatusPending is the initial state of every new application.
	StatusPending Status = "pending"
	// StatusApproved means an administrator accepted the application.
	StatusApproved Status = "approved"
	// StatusRejected is terminal: no transition leads out of it.
	StatusRejected Status = "rejected"
	// StatusInactive is an approved membership that has been switched off;
	// it can be reactivated.
	StatusInactive Status = "inactive"
)

// transitions is the full set of legal status changes. Anything not listed
// is an invalid transition, including re-approving an approved member.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusInactive},
	StatusInactive: {StatusApproved},
	StatusRejected: {},
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusInactive:
		return true
	}
	return false
}

// Display returns the human-readable form used by listings.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending Approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusInactive:
		return "Inactive"
	}
	return string(s)
}
