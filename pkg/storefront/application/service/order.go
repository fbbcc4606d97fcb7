package service

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, shippingAddress, notes string) (*model.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	// GetUserOrder reports ErrOrderNotFound for orders owned by someone else.
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	SubmitPayment(ctx context.Context, userID, orderID uuid.UUID, lastFive string) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error)
}

func NewOrderService(uow UnitOfWork, dispatcher domainservice.EventDispatcher, policy domainservice.StatusPolicy) OrderService {
	return &orderService{
		transactional: transactional{uow: uow, dispatcher: dispatcher},
		policy:        policy,
	}
}

type orderService struct {
	transactional
	policy domainservice.StatusPolicy
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, shippingAddress, notes string) (*model.Order, error) {
	var order *model.Order
	err := s.do(ctx, func(orders domainservice.OrderService) error {
		var err error
		order, err = orders.CreateOrder(userID, shippingAddress, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.TotalAmount.StringFixed(2),
	}).Info("order created")
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		orders, err = provider.OrderRepository().ListByUser(userID)
		return err
	})
	return orders, err
}

func (s *orderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.uow.Execute(ctx, func(provider RepositoryProvider) error {
		var err error
		order, err = provider.OrderRepository().Find(orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) SubmitPayment(ctx context.Context, userID, orderID uuid.UUID, lastFive string) (*model.Order, error) {
	var order *model.Order
	err := s.do(ctx, func(orders domainservice.OrderService) error {
		var err error
		order, err = orders.SubmitPayment(userID, orderID, lastFive)
		return err
	})
	return order, err
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.do(ctx, func(orders domainservice.OrderService) error {
		var err error
		order, err = orders.CancelOrder(userID, orderID)
		return err
	})
	return order, err
}

func (s *orderService) SetStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error) {
	var (
		order    *model.Order
		previous model.OrderStatus
	)
	err := s.do(ctx, func(orders domainservice.OrderService) error {
		var err error
		order, previous, err = orders.SetStatus(orderID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	if previous != order.Status && !previous.CanTransitionTo(order.Status) {
		log.WithFields(log.Fields{
			"orderID": orderID,
			"from":    previous.String(),
			"to":      order.Status.String(),
		}).Warn("order status overridden outside of lifecycle")
	}
	return order, nil
}

func (s *orderService) do(ctx context.Context, action func(orders domainservice.OrderService) error) error {
	return s.execute(ctx, func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error {
		return action(s.orders(provider, dispatcher))
	})
}

func (s *orderService) orders(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) domainservice.OrderService {
	return domainservice.NewOrderService(
		provider.OrderRepository(),
		provider.CartRepository(),
		provider.ProductRepository(),
		dispatcher,
		s.policy,
	)
}
