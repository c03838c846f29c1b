package models

import "time"

type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Address   string    `json:"address" db:"address"`
	BinType   string    `json:"binType" db:"bin_type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RegisterRequest is the request body for POST /api/users/register
type RegisterRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	BinType string `json:"binType"`
}

// RegisterResponse is returned with 201 after a successful registration
type RegisterResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	UserID           int    `json:"userId"`
	ConfirmationSent bool   `json:"confirmationSent"`
	AdminNotified    bool   `json:"adminNotified"`
}
