package service

import (
	"bytes"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
)

var (
	ErrEmptyCart                = errors.New("cannot place an order from an empty cart")
	ErrShippingAddressRequired  = errors.New("shipping address is required")
	ErrInvalidPaymentCode       = errors.New("payment code must be exactly 5 digits")
	ErrOrderCannotBeModified    = errors.New("order cannot be modified in its current state")
	ErrStatusTransitionRejected = errors.New("status transition is not allowed")
)

var paymentCodePattern = regexp.MustCompile(`^[0-9]{5}$`)

// StatusPolicy decides what an administrator may do to an order's status.
type StatusPolicy int

const (
	// OverrideStatusPolicy lets an administrator move an order between any two statuses.
	OverrideStatusPolicy StatusPolicy = iota
	// StrictStatusPolicy only allows moves along the order lifecycle.
	StrictStatusPolicy
)

func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch s {
	case "", "override":
		return OverrideStatusPolicy, nil
	case "strict":
		return StrictStatusPolicy, nil
	default:
		return 0, errors.New("unknown status transition policy " + s)
	}
}

type OrderService interface {
	CreateOrder(userID uuid.UUID, shippingAddress, notes string) (*model.Order, error)
	SubmitPayment(userID, orderID uuid.UUID, lastFive string) (*model.Order, error)
	CancelOrder(userID, orderID uuid.UUID) (*model.Order, error)
	// SetStatus also reports the status the order had before the call.
	SetStatus(orderID uuid.UUID, status string) (*model.Order, model.OrderStatus, error)
}

func NewOrderService(
	orderRepo model.OrderRepository,
	cartRepo model.CartRepository,
	productRepo model.ProductRepository,
	dispatcher EventDispatcher,
	policy StatusPolicy,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		dispatcher:  dispatcher,
		policy:      policy,
	}
}

type orderService struct {
	orderRepo   model.OrderRepository
	cartRepo    model.CartRepository
	productRepo model.ProductRepository
	dispatcher  EventDispatcher
	policy      StatusPolicy
}

// CreateOrder must run inside a transaction: a failed stock decrement on any line
// is only undone by rolling back the decrements of the lines before it.
func (s *orderService) CreateOrder(userID uuid.UUID, shippingAddress, notes string) (*model.Order, error) {
	lines, err := s.cartRepo.Lines(userID)
	if err != nil {
		return nil, err
	}
	cart := model.Cart{UserID: userID, Lines: lines}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return nil, ErrShippingAddressRequired
	}

	for _, line := range cart.Lines {
		if line.Stock < line.Quantity {
			return nil, &model.InsufficientStockError{ProductName: line.Name, Available: line.Stock}
		}
	}

	for _, line := range byProduct(cart.Lines, func(l model.CartLine) uuid.UUID { return l.ProductID }) {
		if err := s.productRepo.DecreaseStock(line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, model.ErrInsufficientStock) {
				return nil, s.insufficientStock(line.ProductID, line.Name)
			}
			return nil, err
		}
	}

	orderID, err := s.orderRepo.NextID()
	if err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		itemID, err := s.orderRepo.NextID()
		if err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{
			ID:           itemID,
			ProductID:    line.ProductID,
			ProductName:  line.Name,
			ProductPrice: line.Price,
			Quantity:     line.Quantity,
			Subtotal:     line.Subtotal().Round(2),
		})
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:              orderID,
		UserID:          userID,
		TotalAmount:     cart.Total(),
		Status:          model.Pending,
		ShippingAddress: shippingAddress,
		Notes:           strings.TrimSpace(notes),
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Clear(userID); err != nil {
		return nil, err
	}

	for _, line := range cart.Lines {
		_ = s.dispatcher.Dispatch(model.ProductStockChanged{ProductID: line.ProductID, ChangeAmount: -line.Quantity})
	}
	_ = s.dispatcher.Dispatch(model.OrderCreated{OrderID: orderID, UserID: userID, TotalAmount: order.TotalAmount})
	return order, nil
}

func (s *orderService) SubmitPayment(userID, orderID uuid.UUID, lastFive string) (*model.Order, error) {
	if !paymentCodePattern.MatchString(lastFive) {
		return nil, ErrInvalidPaymentCode
	}

	order, err := s.findUserOrderForUpdate(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.Pending {
		return nil, ErrOrderCannotBeModified
	}

	order.PaymentLastFive = &lastFive
	order.Status = model.Paid
	order.UpdatedAt = time.Now().UTC()

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderPaymentSubmitted{OrderID: orderID, PaymentLastFive: lastFive})
	_ = s.dispatcher.Dispatch(model.OrderStatusChanged{OrderID: orderID, OldStatus: model.Pending, NewStatus: model.Paid})
	return order, nil
}

func (s *orderService) CancelOrder(userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.findUserOrderForUpdate(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(model.Cancelled) {
		return nil, ErrOrderCannotBeModified
	}

	if err := s.changeStatus(order, model.Cancelled); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) SetStatus(orderID uuid.UUID, status string) (*model.Order, model.OrderStatus, error) {
	newStatus, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, 0, err
	}

	order, err := s.orderRepo.FindForUpdate(orderID)
	if err != nil {
		return nil, 0, err
	}
	previous := order.Status
	if previous == newStatus {
		return order, previous, nil
	}
	if s.policy == StrictStatusPolicy && !previous.CanTransitionTo(newStatus) {
		return nil, 0, ErrStatusTransitionRejected
	}

	if err := s.changeStatus(order, newStatus); err != nil {
		return nil, 0, err
	}
	return order, previous, nil
}

// changeStatus keeps stock in step with the order: a cancelled order holds none of its
// items, every other status holds all of them. Leaving cancelled takes the items out of
// stock again and fails with InsufficientStockError when they are no longer there.
func (s *orderService) changeStatus(order *model.Order, newStatus model.OrderStatus) error {
	oldStatus := order.Status
	release := oldStatus != model.Cancelled && newStatus == model.Cancelled
	reserve := oldStatus == model.Cancelled && newStatus != model.Cancelled
	items := byProduct(order.Items, func(i model.OrderItem) uuid.UUID { return i.ProductID })

	var changes []model.ProductStockChanged
	for _, item := range items {
		switch {
		case release:
			err := s.productRepo.IncreaseStock(item.ProductID, item.Quantity)
			if errors.Is(err, model.ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			changes = append(changes, model.ProductStockChanged{ProductID: item.ProductID, ChangeAmount: item.Quantity})
		case reserve:
			err := s.productRepo.DecreaseStock(item.ProductID, item.Quantity)
			if errors.Is(err, model.ErrInsufficientStock) {
				return s.insufficientStock(item.ProductID, item.ProductName)
			}
			if err != nil {
				return err
			}
			changes = append(changes, model.ProductStockChanged{ProductID: item.ProductID, ChangeAmount: -item.Quantity})
		}
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()
	if err := s.orderRepo.Update(order); err != nil {
		return err
	}

	for _, change := range changes {
		_ = s.dispatcher.Dispatch(change)
	}
	_ = s.dispatcher.Dispatch(model.OrderStatusChanged{OrderID: order.ID, OldStatus: oldStatus, NewStatus: newStatus})
	return nil
}

func (s *orderService) findUserOrderForUpdate(userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindForUpdate(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) insufficientStock(productID uuid.UUID, name string) error {
	available := 0
	if product, err := s.productRepo.Find(productID); err == nil && product.IsActive() {
		available = product.Stock
	}
	return &model.InsufficientStockError{ProductName: name, Available: available}
}

// byProduct returns a copy of entries sorted by product id. Stock rows are always
// written in this order so concurrent transactions lock them in the same sequence.
func byProduct[T any](entries []T, productID func(T) uuid.UUID) []T {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b T) int {
		idA, idB := productID(a), productID(b)
		return bytes.Compare(idA[:], idB[:])
	})
	return sorted
}
