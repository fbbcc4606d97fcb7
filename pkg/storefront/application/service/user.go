package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

// TokenIssuer turns an authenticated user into a bearer token.
type TokenIssuer interface {
	Issue(user model.User) (string, error)
}

type UserService interface {
	Register(ctx context.Context, name, email, phone, birthDate string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	FindUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	// EnsureAdmin creates the administrator account unless the email is already registered.
	EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, error)
}

func NewUserService(
	uow UnitOfWork,
	dispatcher domainservice.EventDispatcher,
	passManager model.PasswordManager,
	tokens TokenIssuer,
) UserService {
	return &userService{
		transactional: transactional{uow: uow, dispatcher: dispatcher},
		passManager:   passManager,
		tokens:        tokens,
	}
}

type userService struct {
	transactional
	passManager model.PasswordManager
	tokens      TokenIssuer
}

func (s *userService) Register(ctx context.Context, name, email, phone, birthDate string) (*model.User, error) {
	var user *model.User
	err := s.execute(ctx, func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error {
		var err error
		user, err = s.users(provider, dispatcher).RegisterNewUser(name, email, phone, birthDate)
		return err
	})
	return user, err
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	var user *model.User
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		user, err = s.users(provider, s.dispatcher).Authenticate(email, password)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) FindUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var user *model.User
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		user, err = provider.UserRepository().Find(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	var user *model.User
	err := s.execute(ctx, func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error {
		var err error
		user, err = s.users(provider, dispatcher).RegisterAdmin(name, email, password)
		if errors.Is(err, model.ErrEmailTaken) {
			user, err = provider.UserRepository().FindByEmail(strings.ToLower(strings.TrimSpace(email)))
		}
		return err
	})
	return user, err
}

func (s *userService) users(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) domainservice.UserService {
	return domainservice.NewUserService(provider.UserRepository(), s.passManager, dispatcher)
}
