package hotels

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelbook/internal/app/booking"
	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	handlersupport "hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

const (
	createHotelKey = "hotels.create"
	updateHotelKey = "hotels.update"
	deleteHotelKey = "hotels.delete"
	createRoomKey  = "hotels.rooms.create"
	updateRoomKey  = "hotels.rooms.update"
	deleteRoomKey  = "hotels.rooms.delete"
)

type adminOnly struct{}

func (adminOnly) RequiredRole() string { return string(domainclient.RoleAdmin) }

// lockedUnit marks commands whose handler commits its own unit while holding
// room locks.
type lockedUnit struct{}

func (lockedUnit) ManagesTransaction() bool { return true }

type HotelFields struct {
	Name     string
	Address  string
	City     string
	Phone    string
	Category int
}

func (f HotelFields) details() domainhotel.Details {
	return domainhotel.Details{Name: f.Name, Address: f.Address, City: f.City, Phone: f.Phone, Category: f.Category}
}

func (f HotelFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return domainhotel.ErrNameRequired
	}
	return domainhotel.ValidateCategory(f.Category)
}

type CreateHotelCommand struct {
	adminOnly
	HotelFields
}

func (c CreateHotelCommand) Key() string { return createHotelKey }

type UpdateHotelCommand struct {
	adminOnly
	ID string
	HotelFields
}

func (c UpdateHotelCommand) Key() string { return updateHotelKey }

// DeleteHotelCommand removes a hotel and its rooms. It is refused while any
// reservation still references the hotel.
type DeleteHotelCommand struct {
	adminOnly
	lockedUnit
	ID string
}

func (c DeleteHotelCommand) Key() string { return deleteHotelKey }

type RoomFields struct {
	Number   string
	Capacity int
	Price    float64
	Type     string
}

func (f RoomFields) details() domainhotel.RoomDetails {
	return domainhotel.RoomDetails{Number: f.Number, Capacity: f.Capacity, Price: f.Price, Type: f.Type}
}

func (f RoomFields) Validate() error {
	switch {
	case strings.TrimSpace(f.Number) == "":
		return domainhotel.ErrRoomNumberRequired
	case f.Capacity <= 0:
		return domainhotel.ErrInvalidCapacity
	case f.Price < 0:
		return domainhotel.ErrInvalidPrice
	}
	return nil
}

type CreateRoomCommand struct {
	adminOnly
	lockedUnit
	HotelID string
	RoomFields
}

func (c CreateRoomCommand) Key() string { return createRoomKey }

type UpdateRoomCommand struct {
	adminOnly
	ID string
	RoomFields
}

func (c UpdateRoomCommand) Key() string { return updateRoomKey }

// DeleteRoomCommand is refused while any reservation still holds the room.
type DeleteRoomCommand struct {
	adminOnly
	lockedUnit
	ID string
}

func (c DeleteRoomCommand) Key() string { return deleteRoomKey }

// AdminHandler serves the hotel and room administration commands. Room and
// hotel removal take the same locks as bookings, so a reservation cannot land
// on a room between the "no reservations" check and the delete.
type AdminHandler struct {
	UoWFactory uow.UoWFactory
	Locker     booking.RoomLocker
	LockWait   time.Duration
	NewID      func() string
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *AdminHandler) CreateHotel(ctx context.Context, cmd CreateHotelCommand) (*dto.Hotel, error) {
	var out dto.Hotel
	err := handlersupport.Managed(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		hotel, err := domainhotel.NewHotel(domainhotel.CreateParams{
			ID:        domainhotel.ID(h.newID()),
			Details:   cmd.details(),
			CreatedAt: h.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Hotels().Save(ctx, hotel); err != nil {
			return err
		}
		out = dto.MapHotel(hotel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.log("hotel created", "hotel_id", out.ID)
	return &out, nil
}

func (h *AdminHandler) UpdateHotel(ctx context.Context, cmd UpdateHotelCommand) (*dto.Hotel, error) {
	var out dto.Hotel
	err := handlersupport.Managed(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		hotel, err := unit.Hotels().ByID(ctx, domainhotel.ID(cmd.ID))
		if err != nil {
			return err
		}
		if err := hotel.Update(cmd.details(), h.now()); err != nil {
			return err
		}
		if err := unit.Hotels().Save(ctx, hotel); err != nil {
			return err
		}
		out = dto.MapHotel(hotel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.log("hotel updated", "hotel_id", out.ID)
	return &out, nil
}

func (h *AdminHandler) DeleteHotel(ctx context.Context, cmd DeleteHotelCommand) (*dto.Hotel, error) {
	var out dto.Hotel
	removedRooms := 0
	hotelID := domainhotel.ID(cmd.ID)
	releaseHotel, err := booking.Acquire(ctx, h.Locker, h.LockWait, []string{booking.HotelLockKey(hotelID)})
	if err != nil {
		return nil, err
	}
	defer releaseHotel()

	// New rooms need the hotel key, so the set read here stays complete.
	rooms, err := h.hotelRooms(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	roomIDs := make([]domainhotel.RoomID, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	releaseRooms, err := booking.Acquire(ctx, h.Locker, h.LockWait, booking.LockKeys(roomIDs))
	if err != nil {
		return nil, err
	}
	defer releaseRooms()

	err = handlersupport.Owned(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		hotel, err := unit.Hotels().ByID(ctx, hotelID)
		if err != nil {
			return err
		}
		held, err := unit.Reservations().Find(ctx, domainreservation.Filter{HotelID: hotel.ID, Limit: 1})
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return domainhotel.ErrHotelHasReservations
		}
		for _, id := range roomIDs {
			if err := unit.Rooms().Delete(ctx, id); err != nil {
				return err
			}
			removedRooms++
		}
		out = dto.MapHotel(hotel)
		return unit.Hotels().Delete(ctx, hotel.ID)
	})
	if err != nil {
		return nil, err
	}
	h.log("hotel deleted", "hotel_id", out.ID, "rooms_removed", removedRooms)
	return &out, nil
}

func (h *AdminHandler) CreateRoom(ctx context.Context, cmd CreateRoomCommand) (*dto.Room, error) {
	var out dto.Room
	release, err := booking.Acquire(ctx, h.Locker, h.LockWait, []string{booking.HotelLockKey(domainhotel.ID(cmd.HotelID))})
	if err != nil {
		return nil, err
	}
	defer release()
	err = handlersupport.Owned(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		hotel, err := unit.Hotels().ByID(ctx, domainhotel.ID(cmd.HotelID))
		if err != nil {
			return err
		}
		room, err := domainhotel.NewRoom(domainhotel.CreateRoomParams{
			ID:          domainhotel.RoomID(h.newID()),
			HotelID:     hotel.ID,
			RoomDetails: cmd.details(),
			CreatedAt:   h.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Rooms().Save(ctx, room); err != nil {
			return err
		}
		out = dto.MapRoom(room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.log("room created", "room_id", out.ID, "hotel_id", out.HotelID, "number", out.Number)
	return &out, nil
}

func (h *AdminHandler) UpdateRoom(ctx context.Context, cmd UpdateRoomCommand) (*dto.Room, error) {
	var out dto.Room
	err := handlersupport.Managed(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, domainhotel.RoomID(cmd.ID))
		if err != nil {
			return err
		}
		if err := room.Update(cmd.details(), h.now()); err != nil {
			return err
		}
		if err := unit.Rooms().Save(ctx, room); err != nil {
			return err
		}
		out = dto.MapRoom(room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.log("room updated", "room_id", out.ID)
	return &out, nil
}

func (h *AdminHandler) DeleteRoom(ctx context.Context, cmd DeleteRoomCommand) (*dto.Room, error) {
	var out dto.Room
	roomID := domainhotel.RoomID(cmd.ID)
	release, err := booking.Acquire(ctx, h.Locker, h.LockWait, booking.LockKeys([]domainhotel.RoomID{roomID}))
	if err != nil {
		return nil, err
	}
	defer release()
	err = handlersupport.Owned(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, roomID)
		if err != nil {
			return err
		}
		held, err := unit.Reservations().Find(ctx, domainreservation.Filter{RoomID: room.ID, Limit: 1})
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return domainhotel.ErrRoomHasReservations
		}
		out = dto.MapRoom(room)
		return unit.Rooms().Delete(ctx, room.ID)
	})
	if err != nil {
		return nil, err
	}
	h.log("room deleted", "room_id", out.ID)
	return &out, nil
}

func (h *AdminHandler) hotelRooms(ctx context.Context, id domainhotel.ID) ([]*domainhotel.Room, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Hotels().ByID(execCtx, id); err != nil {
		return nil, err
	}
	return unit.Rooms().ByHotel(execCtx, id)
}

// Register wires every admin command of h into bus.
func (h *AdminHandler) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler[CreateHotelCommand, *dto.Hotel](bus, commands.HandlerFunc[CreateHotelCommand, *dto.Hotel](h.CreateHotel))
	commands.RegisterHandler[UpdateHotelCommand, *dto.Hotel](bus, commands.HandlerFunc[UpdateHotelCommand, *dto.Hotel](h.UpdateHotel))
	commands.RegisterHandler[DeleteHotelCommand, *dto.Hotel](bus, commands.HandlerFunc[DeleteHotelCommand, *dto.Hotel](h.DeleteHotel))
	commands.RegisterHandler[CreateRoomCommand, *dto.Room](bus, commands.HandlerFunc[CreateRoomCommand, *dto.Room](h.CreateRoom))
	commands.RegisterHandler[UpdateRoomCommand, *dto.Room](bus, commands.HandlerFunc[UpdateRoomCommand, *dto.Room](h.UpdateRoom))
	commands.RegisterHandler[DeleteRoomCommand, *dto.Room](bus, commands.HandlerFunc[DeleteRoomCommand, *dto.Room](h.DeleteRoom))
}

func (h *AdminHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *AdminHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *AdminHandler) log(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Info(msg, args...)
	}
}

var (
	_ middleware.RoleRestricted = CreateHotelCommand{}
	_ middleware.RoleRestricted = DeleteRoomCommand{}
	_ middleware.SelfValidating = CreateHotelCommand{}
	_ middleware.SelfValidating = UpdateRoomCommand{}

	_ middleware.SelfManagedCommand = DeleteHotelCommand{}
	_ middleware.SelfManagedCommand = CreateRoomCommand{}
	_ middleware.SelfManagedCommand = DeleteRoomCommand{}
)
