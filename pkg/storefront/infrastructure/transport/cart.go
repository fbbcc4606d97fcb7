package transport

import (
	"net/http"

	"github.com/google/uuid"
)

type addToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  *int      `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *server) viewCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.View(r.Context(), identityOf(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(cart))
}

func (s *server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ProductID == uuid.Nil {
		writeError(w, invalidInput("product_id is required"))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := s.carts.AddItem(r.Context(), identityOf(r).UserID, req.ProductID, quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "added to cart",
		"item_id": item.ID,
	})
}

func (s *server) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req setQuantityRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, invalidInput("quantity is required"))
		return
	}

	if err := s.carts.SetQuantity(r.Context(), identityOf(r).UserID, itemID, *req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "cart updated")
}

func (s *server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.carts.RemoveItem(r.Context(), identityOf(r).UserID, itemID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "item removed")
}

func (s *server) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.carts.Clear(r.Context(), identityOf(r).UserID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "cart cleared")
}
