package models

import "time"

type User struct {
	ID        string    `json:"id" validate:"required,uuid"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"-" validate:"required,min=8"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Roles     []*Role   `json:"roles,omitempty"`
}

// Role represents a user role (e.g., admin, bursar)
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
