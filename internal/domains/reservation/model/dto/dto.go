package dto

import (
	"time"

	"github.com/google/uuid"

	"lodge/internal/domains/reservation/model"
	roomDto "lodge/internal/domains/room/model/dto"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"
)

type CreateReservationRequest struct {
	RoomID   string `json:"room_id"   validate:"required,uuid4"`
	CheckIn  string `json:"check_in"  validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

// Dates returns the parsed check-in and check-out in the application
// timezone, the same location clock.Today uses, so "today" comparisons do
// not shift across a UTC offset. Validation guarantees the format, so parse
// errors only occur when the request bypassed validation.
func (c *CreateReservationRequest) Dates() (checkIn, checkOut time.Time, err error) {
	checkIn, err = timezone.Parse(constant.DateOnlyFormat, c.CheckIn)
	if err != nil {
		return checkIn, checkOut, err
	}

	checkOut, err = timezone.Parse(constant.DateOnlyFormat, c.CheckOut)

	return checkIn, checkOut, err
}

func (c *CreateReservationRequest) ToModel(guestID string, checkIn, checkOut time.Time) model.Reservation {
	return model.Reservation{
		ID:       uuid.NewString(),
		GuestID:  guestID,
		RoomID:   c.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Status:   model.StatusConfirmed,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  guestID,
			ModifiedBy: guestID,
		},
	}
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

type ReservationResponse struct {
	ID       string `json:"id"`
	GuestID  string `json:"guest_id"`
	RoomID   string `json:"room_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Status   string `json:"status"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.GuestID = model.GuestID
	r.RoomID = model.RoomID
	r.CheckIn = model.CheckIn.Format(constant.DateOnlyFormat)
	r.CheckOut = model.CheckOut.Format(constant.DateOnlyFormat)
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

type SearchAvailabilityResponse struct {
	CheckIn  string                 `json:"check_in"`
	CheckOut string                 `json:"check_out"`
	Rooms    []roomDto.RoomResponse `json:"rooms"`
}
