package domain

// AllowedTransitions defines the valid trip state transitions.
// The key is the current status, the value the set of statuses it may
// legally move to. Statuses absent from a value set are terminal.
//
// The table is intentionally asymmetric: pending cannot reach active
// directly, forcing explicit acceptance and arrival steps.
var AllowedTransitions = map[TripStatus][]TripStatus{
	TripStatusPending: {
		TripStatusAssigned,
		TripStatusCancelled,
		TripStatusCancelledByPassenger,
	},
	TripStatusAssigned: {
		TripStatusArrived,
		TripStatusActive,
		TripStatusCancelled,
		TripStatusCancelledByPassenger,
		TripStatusCancelledWithPenalty,
		TripStatusCancelledByDriver,
	},
	TripStatusArrived: {
		TripStatusActive,
		TripStatusNoShow,
		TripStatusCancelledByPassenger,
		TripStatusCancelledWithPenalty,
		TripStatusCancelledByDriver,
	},
	TripStatusActive: {
		TripStatusCompleted,
		TripStatusCancelled,
		TripStatusDisconnected,
	},
	TripStatusCompleted: {
		TripStatusPaymentFailed,
		TripStatusRefunded,
	},
	TripStatusDisconnected: {
		TripStatusPendingReview,
	},
	TripStatusCancelled:            {},
	TripStatusCancelledByPassenger: {},
	TripStatusCancelledByDriver:    {},
	TripStatusCancelledWithPenalty: {},
	TripStatusNoShow:               {},
	TripStatusPendingReview:        {},
	TripStatusPaymentFailed:        {},
	TripStatusRefunded:             {},
}

// CanTransition reports whether a trip may move from one status to another.
func CanTransition(from, to TripStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal target statuses for the given status.
// The returned slice must not be mutated.
func NextStatuses(from TripStatus) []TripStatus {
	return AllowedTransitions[from]
}

// ValidStatus reports whether s is one of the closed status set.
func ValidStatus(s TripStatus) bool {
	_, ok := AllowedTransitions[s]
	return ok
}
