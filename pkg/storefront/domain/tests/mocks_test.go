package tests

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

var _ model.ProductRepository = &mockProductRepository{}

type mockProductRepository struct {
	store map[uuid.UUID]*model.Product
	// decreased lists product ids in the order DecreaseStock was called.
	decreased []uuid.UUID
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{store: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockProductRepository) Create(p *model.Product) error {
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockProductRepository) Update(p *model.Product) error {
	if _, ok := m.store[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	if p, ok := m.store[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, model.ErrProductNotFound
}

func (m *mockProductRepository) ListActive() ([]model.Product, error) {
	var products []model.Product
	for _, p := range m.store {
		if p.IsActive() {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *mockProductRepository) ListAll() ([]model.Product, error) {
	var products []model.Product
	for _, p := range m.store {
		products = append(products, *p)
	}
	return products, nil
}

func (m *mockProductRepository) DecreaseStock(id uuid.UUID, quantity int) error {
	m.decreased = append(m.decreased, id)
	p, ok := m.store[id]
	if !ok || !p.IsActive() || p.Stock < quantity {
		return model.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *mockProductRepository) IncreaseStock(id uuid.UUID, quantity int) error {
	p, ok := m.store[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

func (m *mockProductRepository) add(name, price string, stock int) *model.Product {
	p, err := service.NewProductService(m, &mockEventDispatcher{}).CreateProduct(service.ProductInput{
		Name:  name,
		Price: mustDecimal(price),
		Stock: stock,
	})
	if err != nil {
		panic(fmt.Sprintf("seed product: %v", err))
	}
	return p
}

var _ model.CartRepository = &mockCartRepository{}

type mockCartRepository struct {
	store    map[uuid.UUID]*model.CartItem
	products *mockProductRepository
	writes   int
}

func newMockCartRepository(products *mockProductRepository) *mockCartRepository {
	return &mockCartRepository{store: make(map[uuid.UUID]*model.CartItem), products: products}
}

func (m *mockCartRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockCartRepository) Find(userID, itemID uuid.UUID) (*model.CartItem, error) {
	if item, ok := m.store[itemID]; ok && item.UserID == userID {
		clone := *item
		return &clone, nil
	}
	return nil, model.ErrCartItemNotFound
}

func (m *mockCartRepository) FindByProduct(userID, productID uuid.UUID) (*model.CartItem, error) {
	for _, item := range m.store {
		if item.UserID == userID && item.ProductID == productID {
			clone := *item
			return &clone, nil
		}
	}
	return nil, model.ErrCartItemNotFound
}

func (m *mockCartRepository) Store(item *model.CartItem) error {
	m.writes++
	clone := *item
	m.store[item.ID] = &clone
	return nil
}

func (m *mockCartRepository) Delete(userID, itemID uuid.UUID) error {
	if item, ok := m.store[itemID]; ok && item.UserID == userID {
		m.writes++
		delete(m.store, itemID)
	}
	return nil
}

func (m *mockCartRepository) Clear(userID uuid.UUID) error {
	for id, item := range m.store {
		if item.UserID == userID {
			m.writes++
			delete(m.store, id)
		}
	}
	return nil
}

func (m *mockCartRepository) Lines(userID uuid.UUID) ([]model.CartLine, error) {
	var lines []model.CartLine
	for _, item := range m.store {
		if item.UserID != userID {
			continue
		}
		p, ok := m.products.store[item.ProductID]
		if !ok || !p.IsActive() {
			continue
		}
		lines = append(lines, model.CartLine{
			ItemID:    item.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			ImageURL:  p.ImageURL,
			Quantity:  item.Quantity,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines, nil
}

func (m *mockCartRepository) quantityOf(userID uuid.UUID) int {
	total := 0
	for _, item := range m.store {
		if item.UserID == userID {
			total += item.Quantity
		}
	}
	return total
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store map[uuid.UUID]*model.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{store: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) { return uuid.NewRandom() }

func (m *mockOrderRepository) Create(order *model.Order) error {
	if _, exists := m.store[order.ID]; exists {
		return errors.New("order with this ID already exists")
	}
	m.store[order.ID] = cloneOrder(order)
	return nil
}

func (m *mockOrderRepository) Update(order *model.Order) error {
	if _, ok := m.store[order.ID]; !ok {
		return model.ErrOrderNotFound
	}
	m.store[order.ID] = cloneOrder(order)
	return nil
}

func (m *mockOrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	if order, ok := m.store[id]; ok {
		return cloneOrder(order), nil
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepository) FindForUpdate(id uuid.UUID) (*model.Order, error) {
	return m.Find(id)
}

func (m *mockOrderRepository) ListByUser(userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	for _, order := range m.store {
		if order.UserID == userID {
			orders = append(orders, *cloneOrder(order))
		}
	}
	return orders, nil
}

func cloneOrder(order *model.Order) *model.Order {
	clone := *order
	clone.Items = append([]model.OrderItem(nil), order.Items...)
	if order.PaymentLastFive != nil {
		code := *order.PaymentLastFive
		clone.PaymentLastFive = &code
	}
	return &clone
}

var _ model.UserRepository = &mockUserRepository{}

type mockUserRepository struct {
	store map[uuid.UUID]*model.User
}

func (m *mockUserRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockUserRepository) Create(user *model.User) error {
	m.store[user.ID] = user
	return nil
}

func (m *mockUserRepository) Find(id uuid.UUID) (*model.User, error) {
	if user, ok := m.store[id]; ok {
		return user, nil
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(email string) (*model.User, error) {
	for _, user := range m.store {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, model.ErrUserNotFound
}

type mockPasswordManager struct{}

func (m *mockPasswordManager) Hash(pwd string) (string, error) {
	if pwd == "" {
		return "", errors.New("empty password")
	}
	return fmt.Sprintf("%s-hashed", pwd), nil
}

func (m *mockPasswordManager) Check(hashed, pwd string) (bool, error) {
	return hashed == fmt.Sprintf("%s-hashed", pwd), nil
}

var _ service.EventDispatcher = &mockEventDispatcher{}

type mockEventDispatcher struct {
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}

func (m *mockEventDispatcher) ofType(eventType string) []service.Event {
	var found []service.Event
	for _, e := range m.events {
		if e.Type() == eventType {
			found = append(found, e)
		}
	}
	return found
}
