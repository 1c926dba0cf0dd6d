package model_test

import (
	"testing"
	"time"

	"lodge/internal/domains/reservation/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReservation_CancellableAt(t *testing.T) {
	today := date(2025, 6, 10)

	tests := []struct {
		name        string
		checkIn     time.Time
		status      string
		cancellable bool
	}{
		{
			name:        "confirmed with future check-in",
			checkIn:     date(2025, 6, 11),
			status:      model.StatusConfirmed,
			cancellable: true,
		},
		{
			name:        "confirmed with check-in today",
			checkIn:     today,
			status:      model.StatusConfirmed,
			cancellable: false,
		},
		{
			name:        "confirmed with past check-in",
			checkIn:     date(2025, 6, 9),
			status:      model.StatusConfirmed,
			cancellable: false,
		},
		{
			name:        "cancelled with future check-in",
			checkIn:     date(2025, 6, 11),
			status:      model.StatusCancelled,
			cancellable: false,
		},
		{
			name:        "completed with future check-in",
			checkIn:     date(2025, 6, 11),
			status:      model.StatusCompleted,
			cancellable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := model.Reservation{
				CheckIn:  tt.checkIn,
				CheckOut: tt.checkIn.AddDate(0, 0, 2),
				Status:   tt.status,
			}

			if got := res.CancellableAt(today); got != tt.cancellable {
				t.Errorf("expected CancellableAt to be %v, got %v", tt.cancellable, got)
			}
		})
	}
}

func TestReservation_CancellableAt_MixedLocations(t *testing.T) {
	// Date columns come back from the driver in UTC while the application
	// clock runs in the configured timezone. The cancel window must depend
	// on the calendar date only, not on the instants.
	loc := time.FixedZone("UTC+10", 10*60*60)
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, loc)

	res := model.Reservation{
		CheckIn:  date(2025, 6, 10),
		CheckOut: date(2025, 6, 12),
		Status:   model.StatusConfirmed,
	}

	if res.CancellableAt(today) {
		t.Error("expected a same-day check-in to be outside the cancel window")
	}

	res.CheckIn = date(2025, 6, 11)

	if !res.CancellableAt(today) {
		t.Error("expected a next-day check-in to stay cancellable")
	}
}
