package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already taken")
	ErrInvalidRole  = errors.New("invalid user role")
)

type Role int

const (
	Customer Role = iota
	Admin
)

func (r Role) String() string {
	switch r {
	case Customer:
		return "customer"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "customer":
		return Customer, nil
	case "admin":
		return Admin, nil
	default:
		return 0, ErrInvalidRole
	}
}

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	BirthDate      time.Time
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
}

type UserRepository interface {
	NextID() (uuid.UUID, error)
	Create(user *User) error
	Find(id uuid.UUID) (*User, error)
	FindByEmail(email string) (*User, error)
}

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Check(hashedPassword, plainTextPassword string) (bool, error)
}
