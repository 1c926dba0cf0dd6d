package dto

import (
	"mime/multipart"

	"lodge/internal/domains/room/model"
	"lodge/shared"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Number    int                   `json:"number"   validate:"required,min=1"`
	Category  string                `json:"category" validate:"required,oneof=single double luxury"`
	Photo     *multipart.FileHeader `json:"photo"    validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	PhotoFile multipart.File        `json:"-"`
	Available *bool                 `json:"available" validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string, photoURL string) model.Room {
	available := true
	if c.Available != nil {
		available = *c.Available
	}

	return model.Room{
		ID:        uuid.NewString(),
		Number:    c.Number,
		Category:  c.Category,
		Photo:     photoURL,
		Available: available,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Number    *int                  `db:"number"    json:"number"   validate:"omitempty,min=1"`
	Category  string                `db:"category"  json:"category" validate:"omitempty,oneof=single double luxury"`
	Photo     *multipart.FileHeader `json:"photo"   validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	PhotoFile multipart.File        `json:"-"`
	Available *bool                 `db:"available" json:"available" validate:"omitempty"`
}

type RoomResponse struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Category  string `json:"category"`
	Photo     string `json:"photo"`
	Available bool   `json:"available"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Number = model.Number
	r.Category = model.Category
	r.Photo = model.Photo
	r.Available = model.Available
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
