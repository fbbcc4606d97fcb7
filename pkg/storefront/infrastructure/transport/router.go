package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/infrastructure/auth"
	"storefront/pkg/storefront/infrastructure/upload"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type ImageStorage interface {
	SaveProductImage(r io.Reader, originalName string) (string, error)
	Dir() string
}

type Dependencies struct {
	Products     service.ProductService
	Carts        service.CartService
	Orders       service.OrderService
	Users        service.UserService
	Settings     service.SettingService
	OrderQueries query.OrderQueryService
	Reports      query.ReportService
	Tokens       TokenVerifier
	Images       ImageStorage
	// Health reports whether the storage backend is reachable.
	Health func(ctx context.Context) error
}

type server struct {
	products     service.ProductService
	carts        service.CartService
	orders       service.OrderService
	users        service.UserService
	settings     service.SettingService
	orderQueries query.OrderQueryService
	reports      query.ReportService
	tokens       TokenVerifier
	images       ImageStorage
	health       func(ctx context.Context) error
}

func Router(deps Dependencies) http.Handler {
	s := &server{
		products:     deps.Products,
		carts:        deps.Carts,
		orders:       deps.Orders,
		users:        deps.Users,
		settings:     deps.Settings,
		orderQueries: deps.OrderQueries,
		reports:      deps.Reports,
		tokens:       deps.Tokens,
		images:       deps.Images,
		health:       deps.Health,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.Handle("/auth/me", s.authenticated(s.me)).Methods(http.MethodGet)

	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	api.Handle("/products", s.admin(s.createProduct)).Methods(http.MethodPost)
	api.Handle("/products/{id}", s.admin(s.updateProduct)).Methods(http.MethodPut)
	api.Handle("/products/{id}", s.admin(s.retireProduct)).Methods(http.MethodDelete)
	api.Handle("/admin/products", s.admin(s.listAllProducts)).Methods(http.MethodGet)

	api.Handle("/cart", s.authenticated(s.viewCart)).Methods(http.MethodGet)
	api.Handle("/cart", s.authenticated(s.addToCart)).Methods(http.MethodPost)
	api.Handle("/cart", s.authenticated(s.clearCart)).Methods(http.MethodDelete)
	api.Handle("/cart/{itemId}", s.authenticated(s.setCartQuantity)).Methods(http.MethodPut)
	api.Handle("/cart/{itemId}", s.authenticated(s.removeFromCart)).Methods(http.MethodDelete)

	// Fixed paths go before /orders/{id}.
	api.Handle("/orders/my", s.authenticated(s.listMyOrders)).Methods(http.MethodGet)
	api.Handle("/orders/admin/all", s.admin(s.listAllOrders)).Methods(http.MethodGet)
	api.Handle("/orders/admin/{id}/status", s.admin(s.setOrderStatus)).Methods(http.MethodPatch)
	api.Handle("/orders", s.authenticated(s.createOrder)).Methods(http.MethodPost)
	api.Handle("/orders/{id}", s.authenticated(s.getOrder)).Methods(http.MethodGet)
	api.Handle("/orders/{id}/payment", s.authenticated(s.submitPayment)).Methods(http.MethodPatch)
	api.Handle("/orders/{id}/cancel", s.authenticated(s.cancelOrder)).Methods(http.MethodPatch)

	api.Handle("/admin/export/{type}", s.admin(s.exportCSV)).Methods(http.MethodGet)
	api.Handle("/admin/webhook/{type}", s.admin(s.exportJSON)).Methods(http.MethodGet)

	api.HandleFunc("/settings", s.listSettings).Methods(http.MethodGet)
	api.Handle("/admin/settings", s.admin(s.updateSettings)).Methods(http.MethodPut)

	api.Handle("/upload/product", s.admin(s.uploadProductImage)).Methods(http.MethodPost)
	if s.images != nil {
		r.PathPrefix(upload.URLPrefix).Handler(
			http.StripPrefix(upload.URLPrefix, http.FileServer(http.Dir(s.images.Dir()))),
		).Methods(http.MethodGet)
	}

	return logMiddleware(recoverMiddleware(r))
}

func (s *server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
