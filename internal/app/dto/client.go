package dto

import (
	"time"

	domainclient "hotelbook/internal/domain/client"
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type ClientCollection struct {
	Items []Client `json:"items"`
}

type ClientDeleted struct {
	ID                  string `json:"id"`
	ReservationsRemoved int    `json:"reservations_removed"`
}

func MapClient(c *domainclient.Client) Client {
	roles := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, string(r))
	}
	return Client{
		ID:        string(c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Roles:     roles,
		CreatedAt: c.CreatedAt,
	}
}
