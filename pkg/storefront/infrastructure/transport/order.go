package transport

import (
	"net/http"
	"strconv"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/domain/model"
)

type createOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

type paymentRequest struct {
	PaymentLastFive string `json:"payment_last_five"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.CreateOrder(r.Context(), identityOf(r).UserID, req.ShippingAddress, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"order": newOrderResponse(order)})
}

func (s *server) listMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ListUserOrders(r.Context(), identityOf(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": newOrdersResponse(orders)})
}

func (s *server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityOf(r)
	var order *model.Order
	if identity.IsAdmin() {
		order, err = s.orders.GetOrder(r.Context(), id)
	} else {
		order, err = s.orders.GetUserOrder(r.Context(), identity.UserID, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": newOrderResponse(order)})
}

func (s *server) submitPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req paymentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.SubmitPayment(r.Context(), identityOf(r).UserID, id, req.PaymentLastFive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": newOrderResponse(order)})
}

func (s *server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.CancelOrder(r.Context(), identityOf(r).UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": newOrderResponse(order)})
}

func (s *server) listAllOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := s.orderQueries.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderPageResponse(page))
}

func (s *server) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req statusRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": newOrderResponse(order)})
}

func parseOrderFilter(r *http.Request) (query.OrderFilter, error) {
	values := r.URL.Query()
	var filter query.OrderFilter

	if status := values.Get("status"); status != "" {
		parsed, err := model.ParseOrderStatus(status)
		if err != nil {
			return filter, err
		}
		filter.Status = &parsed
	}

	for name, target := range map[string]*int{"page": &filter.Page, "limit": &filter.Limit} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, invalidInput(name + " must be a number")
		}
		*target = n
	}
	return filter.Normalize(), nil
}
