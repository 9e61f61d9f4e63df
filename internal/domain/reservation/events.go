package reservation

import (
	"time"

	"hotelbook/internal/domain/client"
	"hotelbook/internal/domain/hotel"
	"hotelbook/internal/domain/shared/daterange"
)

type ReservationCreated struct {
	ReservationID ID
	Code          Code
	HotelID       hotel.ID
	ClientID      client.ID
	RoomIDs       []hotel.RoomID
	Range         daterange.DateRange
	At            time.Time
}

func (e ReservationCreated) EventName() string     { return "reservation.created" }
func (e ReservationCreated) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCreated) OccurredAt() time.Time { return e.At }

type ReservationUpdated struct {
	ReservationID ID
	HotelID       hotel.ID
	ClientID      client.ID
	RoomIDs       []hotel.RoomID
	Range         daterange.DateRange
	At            time.Time
}

func (e ReservationUpdated) EventName() string     { return "reservation.updated" }
func (e ReservationUpdated) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationUpdated) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ID
	Code          Code
	ClientID      client.ID
	At            time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type ReservationDeleted struct {
	ReservationID ID
	Code          Code
	Reason        string
	At            time.Time
}

func (e ReservationDeleted) EventName() string     { return "reservation.deleted" }
func (e ReservationDeleted) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationDeleted) OccurredAt() time.Time { return e.At }
