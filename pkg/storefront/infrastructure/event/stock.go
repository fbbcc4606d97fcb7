package event

import (
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

// StockAuditHandler records every stock movement so inventory changes can be traced in the logs.
func StockAuditHandler(logger log.FieldLogger) Handler {
	return func(e service.Event) error {
		changed, ok := e.(model.ProductStockChanged)
		if !ok {
			return nil
		}
		direction := "restock"
		if changed.ChangeAmount < 0 {
			direction = "sale"
		}
		logger.WithFields(log.Fields{
			"productID": changed.ProductID,
			"change":    changed.ChangeAmount,
			"direction": direction,
		}).Info("stock moved")
		return nil
	}
}

// OrderStatusAuditHandler keeps an audit trail of order status changes.
func OrderStatusAuditHandler(logger log.FieldLogger) Handler {
	return func(e service.Event) error {
		changed, ok := e.(model.OrderStatusChanged)
		if !ok {
			return nil
		}
		logger.WithFields(log.Fields{
			"orderID": changed.OrderID,
			"from":    changed.OldStatus.String(),
			"to":      changed.NewStatus.String(),
		}).Info("order status changed")
		return nil
	}
}
