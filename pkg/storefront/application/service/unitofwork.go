package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
)

// RepositoryProvider hands out repositories bound to one unit of work.
type RepositoryProvider interface {
	ProductRepository() model.ProductRepository
	CartRepository() model.CartRepository
	OrderRepository() model.OrderRepository
	UserRepository() model.UserRepository
	SettingRepository() model.SettingRepository
}

// UnitOfWork runs action atomically: every write made through provider is
// committed when action returns nil and discarded otherwise.
type UnitOfWork interface {
	Execute(ctx context.Context, action func(provider RepositoryProvider) error) error
}

type transactional struct {
	uow        UnitOfWork
	dispatcher domainservice.EventDispatcher
}

// execute holds back domain events until the unit of work commits.
func (t transactional) execute(
	ctx context.Context,
	action func(provider RepositoryProvider, dispatcher domainservice.EventDispatcher) error,
) error {
	buffer := &eventBuffer{}
	err := t.uow.Execute(ctx, func(provider RepositoryProvider) error {
		buffer.events = buffer.events[:0]
		return action(provider, buffer)
	})
	if err != nil {
		return err
	}

	for _, event := range buffer.events {
		if err := t.dispatcher.Dispatch(event); err != nil {
			log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
		}
	}
	return nil
}

type eventBuffer struct {
	events []domainservice.Event
}

func (b *eventBuffer) Dispatch(event domainservice.Event) error {
	b.events = append(b.events, event)
	return nil
}
