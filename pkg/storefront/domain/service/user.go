package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"storefront/pkg/storefront/domain/model"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmail       = errors.New("email is invalid")
	ErrInvalidBirthDate   = errors.New("birth date must be formatted as YYYY-MM-DD")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const (
	minPasswordLength = 8
	birthDateLayout   = "2006-01-02"
	// A registered customer's first password is their birth date as YYYYMMDD.
	initialPasswordLayout = "20060102"
)

type UserService interface {
	RegisterNewUser(name, email, phone, birthDate string) (*model.User, error)
	RegisterAdmin(name, email, plainTextPassword string) (*model.User, error)
	Authenticate(email, plainTextPassword string) (*model.User, error)
}

func NewUserService(repo model.UserRepository, passManager model.PasswordManager, dispatcher EventDispatcher) UserService {
	return &userService{
		repo:        repo,
		passManager: passManager,
		dispatcher:  dispatcher,
	}
}

type userService struct {
	repo        model.UserRepository
	passManager model.PasswordManager
	dispatcher  EventDispatcher
}

func (s *userService) RegisterNewUser(name, email, phone, birthDate string) (*model.User, error) {
	born, err := time.Parse(birthDateLayout, strings.TrimSpace(birthDate))
	if err != nil {
		return nil, ErrInvalidBirthDate
	}

	user, err := s.newUser(name, email, born.Format(initialPasswordLayout), model.Customer)
	if err != nil {
		return nil, err
	}
	user.Phone = strings.TrimSpace(phone)
	user.BirthDate = born

	return s.create(user)
}

func (s *userService) RegisterAdmin(name, email, plainTextPassword string) (*model.User, error) {
	user, err := s.newUser(name, email, plainTextPassword, model.Admin)
	if err != nil {
		return nil, err
	}
	return s.create(user)
}

func (s *userService) Authenticate(email, plainTextPassword string) (*model.User, error) {
	user, err := s.repo.FindByEmail(normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.passManager.Check(user.HashedPassword, plainTextPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) newUser(name, email, plainTextPassword string, role model.Role) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}

	if len(plainTextPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	_, err := s.repo.FindByEmail(email)
	if err == nil {
		return nil, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := s.passManager.Hash(plainTextPassword)
	if err != nil {
		return nil, err
	}

	userID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	return &model.User{
		ID:             userID,
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (s *userService) create(user *model.User) (*model.User, error) {
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserRegistered{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

