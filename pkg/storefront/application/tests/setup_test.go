package tests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

type fixture struct {
	store      *memoryStore
	dispatcher *mockEventDispatcher
	products   service.ProductService
	carts      service.CartService
	orders     service.OrderService
	users      service.UserService
	settings   service.SettingService
}

func setup(t *testing.T, policy domainservice.StatusPolicy) *fixture {
	t.Helper()
	store := newMemoryStore()
	uow := &memoryUnitOfWork{store: store}
	dispatcher := &mockEventDispatcher{}
	return &fixture{
		store:      store,
		dispatcher: dispatcher,
		products:   service.NewProductService(uow, dispatcher),
		carts:      service.NewCartService(uow),
		orders:     service.NewOrderService(uow, dispatcher, policy),
		users:      service.NewUserService(uow, dispatcher, &mockPasswordManager{}, &mockTokenIssuer{}),
		settings:   service.NewSettingService(uow),
	}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	product, err := f.products.CreateProduct(context.Background(), domainservice.ProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) customer(t *testing.T, email string) uuid.UUID {
	t.Helper()
	user, err := f.users.Register(context.Background(), "Customer", email, "0900000000", "1990-01-01")
	require.NoError(t, err)
	return user.ID
}
