package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lodge/internal/domains/reservation/model"
	"lodge/internal/domains/reservation/model/dto"
	"lodge/shared/timezone"
)

func TestCreateReservationRequest_Dates(t *testing.T) {
	req := dto.CreateReservationRequest{
		RoomID:   "room-1",
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
	}

	checkIn, checkOut, err := req.Dates()
	assert.NoError(t, err)

	assert.Equal(t, "2025-06-10", checkIn.Format("2006-01-02"))
	assert.Equal(t, "2025-06-12", checkOut.Format("2006-01-02"))

	// Request dates and clock.Today share the application location, so a
	// check-in dated today never lands a few hours in the past when the
	// configured timezone sits behind UTC.
	assert.Equal(t, timezone.GetLocation(), checkIn.Location())
	assert.Equal(t, timezone.GetLocation(), checkOut.Location())
}

func TestCreateReservationRequest_Dates_Malformed(t *testing.T) {
	req := dto.CreateReservationRequest{
		RoomID:   "room-1",
		CheckIn:  "junk",
		CheckOut: "2025-06-12",
	}

	_, _, err := req.Dates()
	assert.Error(t, err)
}

func TestCreateReservationRequest_ToModel(t *testing.T) {
	req := dto.CreateReservationRequest{
		RoomID:   "room-1",
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
	}

	checkIn, checkOut, err := req.Dates()
	assert.NoError(t, err)

	reservation := req.ToModel("guest-1", checkIn, checkOut)

	assert.NotEmpty(t, reservation.ID)
	assert.Equal(t, "guest-1", reservation.GuestID)
	assert.Equal(t, "room-1", reservation.RoomID)
	assert.Equal(t, model.StatusConfirmed, reservation.Status)
	assert.Equal(t, checkIn, reservation.CheckIn)
	assert.Equal(t, checkOut, reservation.CheckOut)
	assert.Equal(t, "guest-1", reservation.CreatedBy)
}
