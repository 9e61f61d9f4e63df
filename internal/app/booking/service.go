package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/outbox"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/daterange"
)

var ErrServiceMisconfigured = errors.New("booking: service missing dependencies")

const (
	defaultLockWait  = 5 * time.Second
	maxCodeAttempts  = 5
	reasonAdmin      = "admin"
	reasonClientGone = "client_deleted"
)

// Service validates and persists reservations. Writes that touch rooms hold
// the room locks from before the availability check until after commit.
type Service struct {
	UoWFactory uow.UoWFactory
	Locker     RoomLocker
	Checker    Checker
	Codes      domainreservation.CodeGenerator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	LockWait   time.Duration
	NewID      func() string
	Now        func() time.Time
	Logger     *slog.Logger
}

type CreateRequest struct {
	HotelID  domainhotel.ID
	ClientID domainclient.ID
	RoomIDs  []domainhotel.RoomID
	CheckIn  time.Time
	CheckOut time.Time
}

type UpdateRequest struct {
	ID       domainreservation.ID
	HotelID  domainhotel.ID
	ClientID domainclient.ID
	RoomIDs  []domainhotel.RoomID
	CheckIn  time.Time
	CheckOut time.Time
}

// CheckAvailability reports whether room is free over [checkIn, checkOut),
// ignoring exclude when set.
func (s *Service) CheckAvailability(ctx context.Context, room domainhotel.RoomID, checkIn, checkOut time.Time, exclude domainreservation.ID) (bool, error) {
	if s.UoWFactory == nil {
		return false, ErrServiceMisconfigured
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return false, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Rooms().ByID(ctx, room); err != nil {
		return false, unresolved(err, "room", string(room))
	}
	rng := daterange.DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := rng.Validate(); err != nil {
		return false, domainreservation.ErrInvalidDateRange
	}
	return s.Checker.IsAvailable(ctx, unit.Reservations(), room, rng, exclude)
}

// FindAvailableRooms lists every room of the hotel with its availability.
func (s *Service) FindAvailableRooms(ctx context.Context, hotelID domainhotel.ID, rng daterange.DateRange) ([]RoomAvailability, error) {
	if s.UoWFactory == nil {
		return nil, ErrServiceMisconfigured
	}
	if err := rng.Validate(); err != nil {
		return nil, domainreservation.ErrInvalidDateRange
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Hotels().ByID(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.Checker.Rooms(ctx, unit.Rooms(), unit.Reservations(), hotelID, rng)
}

// HotelHasAvailability reports whether at least one room of the hotel is free.
func (s *Service) HotelHasAvailability(ctx context.Context, hotelID domainhotel.ID, rng daterange.DateRange) (bool, error) {
	if s.UoWFactory == nil {
		return false, ErrServiceMisconfigured
	}
	if err := rng.Validate(); err != nil {
		return false, domainreservation.ErrInvalidDateRange
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return false, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return s.Checker.HotelHasAvailability(ctx, unit.Rooms(), unit.Reservations(), hotelID, rng)
}

// CreateReservation books every requested room or nothing.
func (s *Service) CreateReservation(ctx context.Context, req CreateRequest) (*domainreservation.Reservation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var created *domainreservation.Reservation
	err := s.withLocks(ctx, BookingKeys(req.RoomIDs, req.ClientID), func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := s.validate(ctx, unit, req.HotelID, req.ClientID, req.RoomIDs, req.CheckIn, req.CheckOut, "")
		if err != nil {
			return err
		}
		now := s.now()
		code, err := s.uniqueCode(ctx, unit.Reservations(), now)
		if err != nil {
			return err
		}
		res, err := domainreservation.New(domainreservation.CreateParams{
			ID:        domainreservation.ID(s.newID()),
			Code:      code,
			HotelID:   req.HotelID,
			ClientID:  req.ClientID,
			RoomIDs:   p.rooms,
			Range:     p.rng,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := unit.Reservations().Save(ctx, res); err != nil {
			return err
		}
		if err := s.record(ctx, res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("reservation created", "reservation_id", created.ID, "code", created.Code, "hotel_id", created.HotelID, "client_id", created.ClientID, "rooms", len(created.RoomIDs), "stay", created.Range.String())
	}
	return created, nil
}

// UpdateReservation re-runs the booking validation with the reservation
// excluded from its own conflict set, then replaces rooms and dates.
func (s *Service) UpdateReservation(ctx context.Context, req UpdateRequest) (*domainreservation.Reservation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	owner, err := s.ownerOf(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	var updated *domainreservation.Reservation
	err = s.withLocks(ctx, BookingKeys(req.RoomIDs, owner, req.ClientID), func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Reservations().ByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if res.ClientID != owner {
			return domainreservation.ErrConcurrentUpdate
		}
		p, err := s.validate(ctx, unit, req.HotelID, req.ClientID, req.RoomIDs, req.CheckIn, req.CheckOut, res.ID)
		if err != nil {
			return err
		}
		if err := res.Replace(req.HotelID, req.ClientID, p.rooms, p.rng, s.now()); err != nil {
			return err
		}
		if err := unit.Reservations().Save(ctx, res); err != nil {
			return err
		}
		if err := s.record(ctx, res); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("reservation updated", "reservation_id", updated.ID, "rooms", len(updated.RoomIDs), "stay", updated.Range.String())
	}
	return updated, nil
}

// CancelReservation removes a reservation on behalf of its owner.
func (s *Service) CancelReservation(ctx context.Context, id domainreservation.ID, requester domainclient.ID) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := support.Owned(ctx, s.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Reservations().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := res.Cancel(requester, s.now()); err != nil {
			return err
		}
		return s.remove(ctx, unit, res)
	})
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("reservation cancelled", "reservation_id", id, "client_id", requester)
	}
	return nil
}

// AdminDeleteReservation removes a reservation without an ownership check.
func (s *Service) AdminDeleteReservation(ctx context.Context, id domainreservation.ID) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := support.Owned(ctx, s.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Reservations().ByID(ctx, id)
		if err != nil {
			return err
		}
		res.MarkDeleted(reasonAdmin, s.now())
		return s.remove(ctx, unit, res)
	})
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("reservation deleted", "reservation_id", id)
	}
	return nil
}

// DeleteClient removes the client's reservations and then the client. The
// client key keeps new reservations for it out until the delete commits.
// Reservations are removed before the client, so a failed run can be retried:
// whatever was already removed is skipped.
func (s *Service) DeleteClient(ctx context.Context, clientID domainclient.ID) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	removed := 0
	err := s.withLocks(ctx, []string{ClientLockKey(clientID)}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Clients().ByID(ctx, clientID); err != nil {
			return err
		}
		owned, err := unit.Reservations().Find(ctx, domainreservation.Filter{ClientID: clientID})
		if err != nil {
			return err
		}
		now := s.now()
		for _, res := range owned {
			res.MarkDeleted(reasonClientGone, now)
			err := s.remove(ctx, unit, res)
			if errors.Is(err, domainreservation.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			removed++
		}
		return unit.Clients().Delete(ctx, clientID)
	})
	if err != nil {
		return 0, err
	}
	if s.Logger != nil {
		s.Logger.Info("client deleted", "client_id", clientID, "reservations_removed", removed)
	}
	return removed, nil
}

type plan struct {
	rooms []domainhotel.RoomID
	rng   daterange.DateRange
}

// validate applies the booking checks in order; the first failure wins and
// nothing has been written when it returns an error.
func (s *Service) validate(ctx context.Context, unit uow.UnitOfWork, hotelID domainhotel.ID, clientID domainclient.ID, roomIDs []domainhotel.RoomID, checkIn, checkOut time.Time, exclude domainreservation.ID) (plan, error) {
	if hotelID == "" {
		return plan{}, fmt.Errorf("%w: hotel required", domainreservation.ErrInvalidReference)
	}
	if _, err := unit.Hotels().ByID(ctx, hotelID); err != nil {
		return plan{}, unresolved(err, "hotel", string(hotelID))
	}
	if clientID == "" {
		return plan{}, fmt.Errorf("%w: client required", domainreservation.ErrInvalidReference)
	}
	if _, err := unit.Clients().ByID(ctx, clientID); err != nil {
		return plan{}, unresolved(err, "client", string(clientID))
	}

	rooms := uniqueRooms(roomIDs)
	if len(rooms) == 0 {
		return plan{}, domainreservation.ErrNoRoomsSelected
	}

	rng := daterange.DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := rng.Validate(); err != nil {
		return plan{}, domainreservation.ErrInvalidDateRange
	}

	for _, id := range rooms {
		room, err := unit.Rooms().ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainhotel.ErrRoomNotFound) {
				return plan{}, fmt.Errorf("%w: room %s not found", domainreservation.ErrRoomHotelMismatch, id)
			}
			return plan{}, err
		}
		if room.HotelID != hotelID {
			return plan{}, fmt.Errorf("%w: room %s", domainreservation.ErrRoomHotelMismatch, room.Number)
		}
		free, err := s.Checker.IsAvailable(ctx, unit.Reservations(), room.ID, rng, exclude)
		if err != nil {
			return plan{}, err
		}
		if !free {
			return plan{}, &domainreservation.RoomUnavailableError{RoomID: room.ID, RoomNumber: room.Number}
		}
	}
	return plan{rooms: rooms, rng: rng}, nil
}

func (s *Service) withLocks(ctx context.Context, keys []string, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	release, err := Acquire(ctx, s.Locker, s.lockWait(), keys)
	if err != nil {
		return err
	}
	defer release()
	return support.Owned(ctx, s.UoWFactory, fn)
}

func (s *Service) ownerOf(ctx context.Context, id domainreservation.ID) (domainclient.ID, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, s.UoWFactory)
	if err != nil {
		return "", err
	}
	if cleanup != nil {
		defer cleanup()
	}
	res, err := unit.Reservations().ByID(execCtx, id)
	if err != nil {
		return "", err
	}
	return res.ClientID, nil
}

func (s *Service) remove(ctx context.Context, unit uow.UnitOfWork, res *domainreservation.Reservation) error {
	if err := unit.Comments().DeleteByReservation(ctx, res.ID); err != nil {
		return err
	}
	if err := unit.Reservations().Delete(ctx, res.ID); err != nil {
		return err
	}
	return s.record(ctx, res)
}

func (s *Service) record(ctx context.Context, res *domainreservation.Reservation) error {
	encoder := s.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, s.Outbox, encoder, res.DrainEvents())
}

func (s *Service) uniqueCode(ctx context.Context, repo domainreservation.Repository, now time.Time) (domainreservation.Code, error) {
	codes := s.Codes
	if codes == nil {
		codes = domainreservation.RandomCodes{}
	}
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := codes.Next(now)
		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", domainreservation.ErrDuplicateCode
}

func (s *Service) ready() error {
	if s.UoWFactory == nil || s.Locker == nil {
		return ErrServiceMisconfigured
	}
	return nil
}

func (s *Service) lockWait() time.Duration {
	if s.LockWait > 0 {
		return s.LockWait
	}
	return defaultLockWait
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func uniqueRooms(ids []domainhotel.RoomID) []domainhotel.RoomID {
	seen := make(map[domainhotel.RoomID]struct{}, len(ids))
	out := make([]domainhotel.RoomID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func unresolved(err error, kind, id string) error {
	if errors.Is(err, domainhotel.ErrNotFound) || errors.Is(err, domainhotel.ErrRoomNotFound) || errors.Is(err, domainclient.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", domainreservation.ErrInvalidReference, kind, id)
	}
	return err
}
