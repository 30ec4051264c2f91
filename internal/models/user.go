package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	DocumentNumber *string   `json:"document_number,omitempty" db:"document_number"`
	Address        Address   `json:"address" db:"address"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	Role           Role      `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Address is stored as a JSON column.
type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (a *Address) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan address: %w", err)
	}
	if data == nil {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(data, a)
}

type CreateUserRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	Phone          *string `json:"phone,omitempty"`
	DocumentNumber *string `json:"document_number,omitempty"`
	Address        Address `json:"address"`
	Role           Role    `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// UpdateUserRequest only touches the fields that are present.
type UpdateUserRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Email          *string  `json:"email,omitempty" validate:"omitempty,email"`
	Password       *string  `json:"password,omitempty" validate:"omitempty,min=6"`
	Phone          *string  `json:"phone,omitempty"`
	DocumentNumber *string  `json:"document_number,omitempty"`
	Address        *Address `json:"address,omitempty"`
	Role           *Role    `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
