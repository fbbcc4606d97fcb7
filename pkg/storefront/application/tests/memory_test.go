package tests

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
)

var _ service.UnitOfWork = &memoryUnitOfWork{}

// memoryStore keeps every table in maps. Writes apply immediately and are undone
// when the surrounding unit of work fails.
type memoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	cart     map[uuid.UUID]model.CartItem
	orders   map[uuid.UUID]model.Order
	users    map[uuid.UUID]model.User
	settings map[string]string

	// beforeDecrease runs outside the lock ahead of every stock decrement.
	beforeDecrease func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: make(map[uuid.UUID]model.Product),
		cart:     make(map[uuid.UUID]model.CartItem),
		orders:   make(map[uuid.UUID]model.Order),
		users:    make(map[uuid.UUID]model.User),
		settings: make(map[string]string),
	}
}

func (s *memoryStore) stockOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memoryStore) cartSize(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.cart {
		if item.UserID == userID {
			n++
		}
	}
	return n
}

func (s *memoryStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type memoryUnitOfWork struct {
	store *memoryStore
}

func (u *memoryUnitOfWork) Execute(ctx context.Context, action func(provider service.RepositoryProvider) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{store: u.store}
	err := action(tx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memoryTx struct {
	store *memoryStore
	undo  []func()
}

// record must be called with the store lock held.
func (tx *memoryTx) record(undo func()) {
	tx.undo = append(tx.undo, undo)
}

func (tx *memoryTx) rollback() {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

func (tx *memoryTx) ProductRepository() model.ProductRepository { return &memoryProducts{tx} }
func (tx *memoryTx) CartRepository() model.CartRepository       { return &memoryCart{tx} }
func (tx *memoryTx) OrderRepository() model.OrderRepository     { return &memoryOrders{tx} }
func (tx *memoryTx) UserRepository() model.UserRepository       { return &memoryUsers{tx} }
func (tx *memoryTx) SettingRepository() model.SettingRepository { return &memorySettings{tx} }

type memoryProducts struct{ tx *memoryTx }

func (r *memoryProducts) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (r *memoryProducts) Create(p *model.Product) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	r.tx.record(func() { delete(s.products, p.ID) })
	return nil
}

func (r *memoryProducts) Update(p *model.Product) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.products[p.ID]
	if !ok {
		return model.ErrProductNotFound
	}
	s.products[p.ID] = *p
	r.tx.record(func() { s.products[p.ID] = old })
	return nil
}

func (r *memoryProducts) Find(id uuid.UUID) (*model.Product, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	return &p, nil
}

func (r *memoryProducts) ListActive() ([]model.Product, error) {
	all, _ := r.ListAll()
	var active []model.Product
	for _, p := range all {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}

func (r *memoryProducts) ListAll() ([]model.Product, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	return products, nil
}

func (r *memoryProducts) DecreaseStock(id uuid.UUID, quantity int) error {
	s := r.tx.store
	if s.beforeDecrease != nil {
		s.beforeDecrease()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || !p.IsActive() || p.Stock < quantity {
		return model.ErrInsufficientStock
	}
	p.Stock -= quantity
	s.products[id] = p
	r.tx.record(func() {
		p := s.products[id]
		p.Stock += quantity
		s.products[id] = p
	})
	return nil
}

func (r *memoryProducts) IncreaseStock(id uuid.UUID, quantity int) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	p.Stock += quantity
	s.products[id] = p
	r.tx.record(func() {
		p := s.products[id]
		p.Stock -= quantity
		s.products[id] = p
	})
	return nil
}

type memoryCart struct{ tx *memoryTx }

func (r *memoryCart) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (r *memoryCart) Find(userID, itemID uuid.UUID) (*model.CartItem, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.cart[itemID]
	if !ok || item.UserID != userID {
		return nil, model.ErrCartItemNotFound
	}
	return &item, nil
}

func (r *memoryCart) FindByProduct(userID, productID uuid.UUID) (*model.CartItem, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.cart {
		if item.UserID == userID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, model.ErrCartItemNotFound
}

func (r *memoryCart) Store(item *model.CartItem) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	old, existed := s.cart[item.ID]
	s.cart[item.ID] = *item
	r.tx.record(func() {
		if existed {
			s.cart[item.ID] = old
		} else {
			delete(s.cart, item.ID)
		}
	})
	return nil
}

func (r *memoryCart) Delete(userID, itemID uuid.UUID) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.cart[itemID]
	if !ok || old.UserID != userID {
		return nil
	}
	delete(s.cart, itemID)
	r.tx.record(func() { s.cart[itemID] = old })
	return nil
}

func (r *memoryCart) Clear(userID uuid.UUID) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.cart {
		if item.UserID != userID {
			continue
		}
		delete(s.cart, id)
		old := item
		r.tx.record(func() { s.cart[old.ID] = old })
	}
	return nil
}

func (r *memoryCart) Lines(userID uuid.UUID) ([]model.CartLine, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []model.CartLine
	for _, item := range s.cart {
		p, ok := s.products[item.ProductID]
		if item.UserID != userID || !ok || !p.IsActive() {
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

type memoryOrders struct{ tx *memoryTx }

func (r *memoryOrders) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (r *memoryOrders) Create(order *model.Order) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = cloneOrder(*order)
	r.tx.record(func() { delete(s.orders, order.ID) })
	return nil
}

func (r *memoryOrders) Update(order *model.Order) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.orders[order.ID]
	if !ok {
		return model.ErrOrderNotFound
	}
	updated := old
	updated.Status = order.Status
	updated.PaymentLastFive = order.PaymentLastFive
	updated.UpdatedAt = order.UpdatedAt
	s.orders[order.ID] = cloneOrder(updated)
	r.tx.record(func() { s.orders[order.ID] = old })
	return nil
}

func (r *memoryOrders) Find(id uuid.UUID) (*model.Order, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	clone := cloneOrder(order)
	return &clone, nil
}

func (r *memoryOrders) FindForUpdate(id uuid.UUID) (*model.Order, error) {
	return r.Find(id)
}

func (r *memoryOrders) ListByUser(userID uuid.UUID) ([]model.Order, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func cloneOrder(order model.Order) model.Order {
	order.Items = append([]model.OrderItem(nil), order.Items...)
	if order.PaymentLastFive != nil {
		code := *order.PaymentLastFive
		order.PaymentLastFive = &code
	}
	return order
}

type memoryUsers struct{ tx *memoryTx }

func (r *memoryUsers) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (r *memoryUsers) Create(user *model.User) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return model.ErrEmailTaken
		}
	}
	s.users[user.ID] = *user
	r.tx.record(func() { delete(s.users, user.ID) })
	return nil
}

func (r *memoryUsers) Find(id uuid.UUID) (*model.User, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUsers) FindByEmail(email string) (*model.User, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, model.ErrUserNotFound
}

type memorySettings struct{ tx *memoryTx }

func (r *memorySettings) List() ([]model.Setting, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := make([]model.Setting, 0, len(s.settings))
	for key, value := range s.settings {
		settings = append(settings, model.Setting{Key: key, Value: value})
	}
	return settings, nil
}

func (r *memorySettings) Store(key, value string) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	old, existed := s.settings[key]
	s.settings[key] = value
	r.tx.record(func() {
		if existed {
			s.settings[key] = old
		} else {
			delete(s.settings, key)
		}
	})
	return nil
}
