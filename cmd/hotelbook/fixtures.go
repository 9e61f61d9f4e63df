package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	domainhotel "hotelbook/internal/domain/hotel"
)

type hotelFixture struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	City     string        `json:"city"`
	Phone    string        `json:"phone"`
	Category int           `json:"category"`
	Rooms    []roomFixture `json:"rooms"`
}

type roomFixture struct {
	ID       string  `json:"id"`
	Number   string  `json:"number"`
	Capacity int     `json:"capacity"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
}

// loadHotelFixtures imports hotels and rooms from a JSON file. Records are
// saved by id, so loading the same file twice is harmless.
func (a *application) loadHotelFixtures(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.logger.Info("hotel fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		a.logger.Warn("hotel fixtures file empty", "path", path)
		return nil
	}

	var fixtures []hotelFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		hotel, err := domainhotel.NewHotel(domainhotel.CreateParams{
			ID: domainhotel.ID(fx.ID),
			Details: domainhotel.Details{
				Name:     fx.Name,
				Address:  fx.Address,
				City:     fx.City,
				Phone:    fx.Phone,
				Category: fx.Category,
			},
			CreatedAt: now,
		})
		if err != nil {
			a.logger.Error("fixture invalid", "hotel_id", fx.ID, "error", err)
			continue
		}
		if err := a.repos.hotels.Save(ctx, hotel); err != nil {
			a.logger.Error("cannot store fixture hotel", "hotel_id", fx.ID, "error", err)
			continue
		}
		imported := 0
		for _, rf := range fx.Rooms {
			room, err := domainhotel.NewRoom(domainhotel.CreateRoomParams{
				ID:      domainhotel.RoomID(rf.ID),
				HotelID: hotel.ID,
				RoomDetails: domainhotel.RoomDetails{
					Number:   rf.Number,
					Capacity: rf.Capacity,
					Price:    rf.Price,
					Type:     rf.Type,
				},
				CreatedAt: now,
			})
			if err != nil {
				a.logger.Error("fixture room invalid", "hotel_id", fx.ID, "room_id", rf.ID, "error", err)
				continue
			}
			if err := a.repos.rooms.Save(ctx, room); err != nil {
				a.logger.Error("cannot store fixture room", "hotel_id", fx.ID, "room_id", rf.ID, "error", err)
				continue
			}
			imported++
		}
		a.logger.Info("hotel fixture imported", "hotel_id", hotel.ID, "rooms", imported)
	}
	return nil
}

func defaultHotelFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "hotels.json"),
		filepath.Join("..", "..", "data", "hotels.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
