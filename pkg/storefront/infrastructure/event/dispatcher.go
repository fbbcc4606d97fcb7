package event

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/service"
)

type Handler func(event service.Event) error

var _ service.EventDispatcher = &Dispatcher{}

// Dispatcher logs every event and fans it out to the handlers subscribed to its type.
// Handlers run synchronously after the originating transaction has committed.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   log.FieldLogger
}

func NewDispatcher(logger log.FieldLogger) *Dispatcher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Dispatcher{handlers: make(map[string][]Handler), logger: logger}
}

func (d *Dispatcher) Subscribe(eventType string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *Dispatcher) Dispatch(event service.Event) error {
	d.logger.WithFields(log.Fields{
		"type":    event.Type(),
		"payload": event,
	}).Info("domain event")

	d.mu.RLock()
	handlers := d.handlers[event.Type()]
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			return errors.Wrapf(err, "handler for %s failed", event.Type())
		}
	}
	return nil
}
