package service

import (
	"context"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	// GetProduct only returns products visible in the catalog.
	GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, input domainservice.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, patch domainservice.ProductPatch) (*model.Product, error)
	RetireProduct(ctx context.Context, productID uuid.UUID) error
}

func NewProductService(uow UnitOfWork, dispatcher domainservice.EventDispatcher) ProductService {
	return &productService{transactional{uow: uow, dispatcher: dispatcher}}
}

type productService struct {
	transactional
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		products, err = provider.ProductRepository().ListActive()
		return err
	})
	return products, err
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		products, err = provider.ProductRepository().ListAll()
		return err
	})
	return products, err
}

func (s *productService) GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	var product *model.Product
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		product, err = provider.ProductRepository().Find(productID)
		if err != nil {
			return err
		}
		if !product.IsActive() {
			return model.ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input domainservice.ProductInput) (*model.Product, error) {
	var product *model.Product
	err := s.execute(ctx, func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error {
		var err error
		product, err = domainservice.NewProductService(provider.ProductRepository(), dispatcher).CreateProduct(input)
		return err
	})
	return product, err
}

func (s *productService) UpdateProduct(ctx context.Context, productID uuid.UUID, patch domainservice.ProductPatch) (*model.Product, error) {
	var product *model.Product
	err := s.execute(ctx, func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error {
		var err error
		product, err = domainservice.NewProductService(provider.ProductRepository(), dispatcher).UpdateProduct(productID, patch)
		return err
	})
	return product, err
}

func (s *productService) RetireProduct(ctx context.Context, productID uuid.UUID) error {
	return s.execute(ctx, func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error {
		return domainservice.NewProductService(provider.ProductRepository(), dispatcher).RetireProduct(productID)
	})
}
