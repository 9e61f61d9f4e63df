package dto

import (
	"time"

	domainclient "hotelbook/internal/domain/client"
)

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Client    Client    `json:"client"`
}

func NewAuthResponse(client *domainclient.Client, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{Token: token, ExpiresAt: expiresAt, Client: MapClient(client)}
}
