package request

import "errors"

var ErrInvalidStatus = errors.New("invalid request status")

// Status is a closed enum; any transition not listed in the table below
// is rejected. pending and observations hold a seat reservation,
// approved and rejected are terminal.
type Status string

const (
	StatusPending      Status = "pending"
	StatusObservations Status = "observations"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusObservations: true,
		StatusApproved:     true,
		StatusRejected:     true,
	},
	StatusObservations: {
		StatusObservations: true,
		StatusApproved:     true,
		StatusRejected:     true,
	},
	StatusApproved: {},
	StatusRejected: {},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusObservations, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

func (s Status) CanTransitionTo(next Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	return allowed[next]
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// HoldsReservation reports whether a request in this state still holds
// its seat reservation on the principal (and promotional) section.
func (s Status) HoldsReservation() bool {
	return s == StatusPending || s == StatusObservations
}

func (s Status) String() string {
	return string(s)
}
