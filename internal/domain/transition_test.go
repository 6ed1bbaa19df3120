package domain

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	path := []TripStatus{
		TripStatusPending,
		TripStatusAssigned,
		TripStatusArrived,
		TripStatusActive,
		TripStatusCompleted,
	}

	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	cases := []struct {
		from, to TripStatus
	}{
		{TripStatusPending, TripStatusActive},
		{TripStatusPending, TripStatusCompleted},
		{TripStatusAssigned, TripStatusCompleted},
		{TripStatusArrived, TripStatusCompleted},
		{TripStatusActive, TripStatusAssigned},
		{TripStatusCompleted, TripStatusActive},
	}

	for _, tc := range cases {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	terminals := []TripStatus{
		TripStatusCancelled,
		TripStatusCancelledByPassenger,
		TripStatusCancelledByDriver,
		TripStatusCancelledWithPenalty,
		TripStatusNoShow,
		TripStatusPendingReview,
		TripStatusPaymentFailed,
		TripStatusRefunded,
	}

	for _, s := range terminals {
		if next := NextStatuses(s); len(next) != 0 {
			t.Errorf("terminal status %s has successors %v", s, next)
		}
	}
}

func TestCompletedIsNotTerminal(t *testing.T) {
	trip := &Trip{Status: TripStatusCompleted}
	if trip.IsTerminal() {
		t.Error("completed must allow payment outcome transitions")
	}
	if !CanTransition(TripStatusCompleted, TripStatusPaymentFailed) {
		t.Error("completed -> payment_failed must be allowed")
	}
	if !CanTransition(TripStatusCompleted, TripStatusRefunded) {
		t.Error("completed -> refunded must be allowed")
	}
}

func TestDisconnectedPath(t *testing.T) {
	if !CanTransition(TripStatusActive, TripStatusDisconnected) {
		t.Error("active -> disconnected must be allowed")
	}
	if !CanTransition(TripStatusDisconnected, TripStatusPendingReview) {
		t.Error("disconnected -> pending_review must be allowed")
	}
	if CanTransition(TripStatusDisconnected, TripStatusCompleted) {
		t.Error("disconnected -> completed must be rejected")
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(TripStatusActive) {
		t.Error("active must be a valid status")
	}
	if ValidStatus(TripStatus("teleporting")) {
		t.Error("unknown status must be invalid")
	}
}

func TestClosesTrip(t *testing.T) {
	closing := []TripStatus{
		TripStatusCompleted,
		TripStatusCancelled,
		TripStatusCancelledByPassenger,
		TripStatusCancelledByDriver,
		TripStatusCancelledWithPenalty,
		TripStatusNoShow,
	}
	for _, s := range closing {
		if !ClosesTrip(s) {
			t.Errorf("%s must close the trip", s)
		}
	}

	for _, s := range []TripStatus{TripStatusActive, TripStatusDisconnected, TripStatusPendingReview} {
		if ClosesTrip(s) {
			t.Errorf("%s must not close the trip", s)
		}
	}
}
