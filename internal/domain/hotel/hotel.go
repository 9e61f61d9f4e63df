package hotel

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired           = errors.New("hotel: id is required")
	ErrNameRequired         = errors.New("hotel: name is required")
	ErrInvalidCategory      = errors.New("hotel: category must be between 1 and 5")
	ErrNotFound             = errors.New("hotel: not found")
	ErrHotelHasReservations = errors.New("hotel: reservations still reference this hotel")
)

const (
	MinCategory = 1
	MaxCategory = 5
)

type ID string

type Hotel struct {
	ID        ID
	Name      string
	Address   string
	City      string
	Phone     string
	Category  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows hotel listings. Query matches name or city, case-insensitive.
type Filter struct {
	Query string
	Skip  int
	Limit int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Hotel, error)
	Find(ctx context.Context, filter Filter) ([]*Hotel, error)
	Save(ctx context.Context, hotel *Hotel) error
	Delete(ctx context.Context, id ID) error
}

type Details struct {
	Name     string
	Address  string
	City     string
	Phone    string
	Category int
}

type CreateParams struct {
	ID ID
	Details
	CreatedAt time.Time
}

func NewHotel(params CreateParams) (*Hotel, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	h := &Hotel{ID: ID(id)}
	if err := h.apply(params.Details); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	h.CreatedAt = now.UTC()
	h.UpdatedAt = h.CreatedAt
	return h, nil
}

// Update overwrites the editable fields after validating them.
func (h *Hotel) Update(details Details, now time.Time) error {
	if err := h.apply(details); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now()
	}
	h.UpdatedAt = now.UTC()
	return nil
}

func (h *Hotel) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrNameRequired
	}
	if err := ValidateCategory(d.Category); err != nil {
		return err
	}
	h.Name = name
	h.Address = strings.TrimSpace(d.Address)
	h.City = strings.TrimSpace(d.City)
	h.Phone = strings.TrimSpace(d.Phone)
	h.Category = d.Category
	return nil
}

func ValidateCategory(category int) error {
	if category < MinCategory || category > MaxCategory {
		return ErrInvalidCategory
	}
	return nil
}

// Matches reports whether the hotel name or city contains query.
func (h *Hotel) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(h.Name), query) ||
		strings.Contains(strings.ToLower(h.City), query)
}
