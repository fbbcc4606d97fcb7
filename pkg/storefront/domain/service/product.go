package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/storefront/domain/model"
)

var (
	ErrProductNameRequired = errors.New("product name is required")
	ErrNegativePrice       = errors.New("price cannot be negative")
	ErrNegativeStock       = errors.New("stock cannot be negative")
)

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

// ProductPatch carries the fields an admin edit touches; nil fields stay unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	Status      *model.ProductStatus
}

type ProductService interface {
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(productID uuid.UUID, patch ProductPatch) (*model.Product, error)
	RetireProduct(productID uuid.UUID) error
}

func NewProductService(repo model.ProductRepository, dispatcher EventDispatcher) ProductService {
	return &productService{repo: repo, dispatcher: dispatcher}
}

type productService struct {
	repo       model.ProductRepository
	dispatcher EventDispatcher
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateProduct(name, input.Price, input.Stock); err != nil {
		return nil, err
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		Name:        name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		Status:      model.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: name})
	return product, nil
}

func (s *productService) UpdateProduct(productID uuid.UUID, patch ProductPatch) (*model.Product, error) {
	product, err := s.repo.Find(productID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = patch.Price.Round(2)
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		product.ImageURL = *patch.ImageURL
	}
	if patch.Status != nil {
		product.Status = *patch.Status
	}

	if err := validateProduct(product.Name, product.Price, product.Stock); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductUpdated{ProductID: productID})
	return product, nil
}

func (s *productService) RetireProduct(productID uuid.UUID) error {
	product, err := s.repo.Find(productID)
	if err != nil {
		return err
	}
	if product.Status == model.Retired {
		return nil
	}

	product.Status = model.Retired
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductRetired{ProductID: productID})
	return nil
}

func validateProduct(name string, price decimal.Decimal, stock int) error {
	if name == "" {
		return ErrProductNameRequired
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
