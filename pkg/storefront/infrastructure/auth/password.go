package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"storefront/pkg/storefront/domain/model"
)

var _ model.PasswordManager = PasswordManager{}

type PasswordManager struct {
	Cost int
}

func NewPasswordManager() PasswordManager {
	return PasswordManager{Cost: bcrypt.DefaultCost}
}

func (m PasswordManager) Hash(plainTextPassword string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), m.Cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}

func (m PasswordManager) Check(hashedPassword, plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainTextPassword))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}
