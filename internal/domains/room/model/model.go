package model

import "lodge/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID        = "id"
	FieldNumber    = "number"
	FieldCategory  = "category"
	FieldAvailable = "available"
	FieldPhoto     = "photo"
)

const (
	CategorySingle = "single"
	CategoryDouble = "double"
	CategoryLuxury = "luxury"
)

type Room struct {
	ID       string `db:"id"`
	Number   int    `db:"number"`
	Category string `db:"category"`
	// Available is the administrative flag. It is independent of bookings:
	// staff clear it for maintenance or other unavailability.
	Available bool   `db:"available"`
	Photo     string `db:"photo"`
	model.Metadata
}
