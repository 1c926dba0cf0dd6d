package model

import (
	"time"

	"lodge/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID       = "id"
	FieldGuestID  = "guest_id"
	FieldRoomID   = "room_id"
	FieldCheckIn  = "check_in"
	FieldCheckOut = "check_out"
	FieldStatus   = "status"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Reservation struct {
	ID       string    `db:"id"`
	GuestID  string    `db:"guest_id"`
	RoomID   string    `db:"room_id"`
	CheckIn  time.Time `db:"check_in"`
	CheckOut time.Time `db:"check_out"`
	Status   string    `db:"status"`
	model.Metadata
}

// CancellableAt reports whether the guest may still cancel: the reservation
// must be confirmed and its check-in strictly after today. This is the single
// authoritative predicate for the guest cancel window. Calendar dates are
// compared, not instants, since the driver and the application clock may
// carry different locations.
func (r *Reservation) CancellableAt(today time.Time) bool {
	return r.Status == StatusConfirmed && calendarDate(r.CheckIn).After(calendarDate(today))
}

func calendarDate(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
