package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrOutOfStock      = errors.New("requested quantity exceeds stock")
)

type CartService interface {
	AddItem(userID, productID uuid.UUID, quantity int) (*model.CartItem, error)
	SetQuantity(userID, itemID uuid.UUID, quantity int) error
	RemoveItem(userID, itemID uuid.UUID) error
	Clear(userID uuid.UUID) error
	View(userID uuid.UUID) (*model.Cart, error)
}

func NewCartService(cartRepo model.CartRepository, productRepo model.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

type cartService struct {
	cartRepo    model.CartRepository
	productRepo model.ProductRepository
}

func (s *cartService) AddItem(userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.findActiveProduct(productID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindByProduct(userID, productID)
	switch {
	case errors.Is(err, model.ErrCartItemNotFound):
		itemID, err := s.cartRepo.NextID()
		if err != nil {
			return nil, err
		}
		item = &model.CartItem{
			ID:        itemID,
			UserID:    userID,
			ProductID: productID,
			CreatedAt: time.Now().UTC(),
		}
	case err != nil:
		return nil, err
	}

	newQuantity := item.Quantity + quantity
	if newQuantity > product.Stock {
		return nil, ErrOutOfStock
	}
	item.Quantity = newQuantity

	if err := s.cartRepo.Store(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) SetQuantity(userID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(userID, itemID)
	}

	item, err := s.cartRepo.Find(userID, itemID)
	if err != nil {
		return err
	}

	product, err := s.findActiveProduct(item.ProductID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return ErrOutOfStock
	}

	item.Quantity = quantity
	return s.cartRepo.Store(item)
}

func (s *cartService) RemoveItem(userID, itemID uuid.UUID) error {
	return s.cartRepo.Delete(userID, itemID)
}

func (s *cartService) Clear(userID uuid.UUID) error {
	return s.cartRepo.Clear(userID)
}

func (s *cartService) View(userID uuid.UUID) (*model.Cart, error) {
	lines, err := s.cartRepo.Lines(userID)
	if err != nil {
		return nil, err
	}
	return &model.Cart{UserID: userID, Lines: lines}, nil
}

func (s *cartService) findActiveProduct(productID uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.Find(productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}
