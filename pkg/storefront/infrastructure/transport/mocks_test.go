package transport

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/infrastructure/auth"
)

var _ TokenVerifier = &mockTokens{}

type mockTokens struct {
	claims map[string]*auth.Claims
}

func (m *mockTokens) Verify(token string) (*auth.Claims, error) {
	if claims, ok := m.claims[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

// The service mocks embed their interface; calling a method a test did not
// expect panics and fails that test.
type mockUserService struct {
	service.UserService
	users map[uuid.UUID]*model.User
}

func (m *mockUserService) FindUser(_ context.Context, userID uuid.UUID) (*model.User, error) {
	if user, ok := m.users[userID]; ok {
		return user, nil
	}
	return nil, model.ErrUserNotFound
}

type mockProductService struct {
	service.ProductService
	products []model.Product
}

func (m *mockProductService) ListAllProducts(context.Context) ([]model.Product, error) {
	return m.products, nil
}

func (m *mockProductService) GetProduct(_ context.Context, productID uuid.UUID) (*model.Product, error) {
	for i := range m.products {
		if m.products[i].ID == productID && m.products[i].IsActive() {
			return &m.products[i], nil
		}
	}
	return nil, model.ErrProductNotFound
}

type mockOrderService struct {
	service.OrderService
	mu         sync.Mutex
	order      *model.Order
	createErr  error
	paymentErr error
	calls      []string
}

func (m *mockOrderService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockOrderService) CreateOrder(context.Context, uuid.UUID, string, string) (*model.Order, error) {
	m.record("CreateOrder")
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.order, nil
}

func (m *mockOrderService) GetOrder(_ context.Context, orderID uuid.UUID) (*model.Order, error) {
	m.record("GetOrder")
	if m.order == nil || m.order.ID != orderID {
		return nil, model.ErrOrderNotFound
	}
	return m.order, nil
}

func (m *mockOrderService) GetUserOrder(_ context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	m.record("GetUserOrder")
	if m.order == nil || m.order.ID != orderID || m.order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return m.order, nil
}

func (m *mockOrderService) SubmitPayment(context.Context, uuid.UUID, uuid.UUID, string) (*model.Order, error) {
	m.record("SubmitPayment")
	if m.paymentErr != nil {
		return nil, m.paymentErr
	}
	return m.order, nil
}

type mockCartService struct {
	service.CartService
	addErr error
}

func (m *mockCartService) AddItem(_ context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &model.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity}, nil
}

type mockOrderQueries struct {
	filter query.OrderFilter
}

func (m *mockOrderQueries) ListOrders(_ context.Context, filter query.OrderFilter) (*query.OrderPage, error) {
	m.filter = filter
	return query.NewOrderPage(filter, nil, 0), nil
}

type mockReportService struct {
	table *query.Table
}

func (m *mockReportService) Report(_ context.Context, reportType string) (*query.Table, error) {
	if reportType != m.table.Type {
		return nil, query.ErrUnknownReport
	}
	return m.table, nil
}

type mockImages struct {
	dir string
}

func (m *mockImages) SaveProductImage(io.Reader, string) (string, error) {
	return "/uploads/products/image.png", nil
}

func (m *mockImages) Dir() string { return m.dir }
