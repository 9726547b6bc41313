package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleClient = "client"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User statuses
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User is the model for the 'users' table.
type User struct {
	ID           string  `json:"id" db:"id"`
	Email        string  `json:"email" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
	FullName     string  `json:"fullName" db:"full_name"`
	PhoneNumber  *string `json:"phoneNumber,omitempty" db:"phone_number"`
	Role         string  `json:"role" db:"role"`
	Status       string  `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsStaff reports whether the user may use the CMS.
func (u *User) IsStaff() bool {
	return u.Role == RoleEditor || u.Role == RoleAdmin
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
