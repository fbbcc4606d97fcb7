package service

import (
	"context"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

type CartService interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	View(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
}

func NewCartService(uow UnitOfWork) CartService {
	return &cartService{uow: uow}
}

type cartService struct {
	uow UnitOfWork
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	var item *model.CartItem
	err := s.do(ctx, func(carts domainservice.CartService) error {
		var err error
		item, err = carts.AddItem(userID, productID, quantity)
		return err
	})
	return item, err
}

func (s *cartService) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	return s.do(ctx, func(carts domainservice.CartService) error {
		return carts.SetQuantity(userID, itemID, quantity)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.do(ctx, func(carts domainservice.CartService) error {
		return carts.RemoveItem(userID, itemID)
	})
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.do(ctx, func(carts domainservice.CartService) error {
		return carts.Clear(userID)
	})
}

func (s *cartService) View(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	var cart *model.Cart
	err := s.do(ctx, func(carts domainservice.CartService) error {
		var err error
		cart, err = carts.View(userID)
		return err
	})
	return cart, err
}

func (s *cartService) do(ctx context.Context, action func(carts domainservice.CartService) error) error {
	return s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		return action(domainservice.NewCartService(provider.CartRepository(), provider.ProductRepository()))
	})
}
