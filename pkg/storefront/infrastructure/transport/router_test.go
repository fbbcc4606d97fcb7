package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
	"storefront/pkg/storefront/infrastructure/auth"
)

const (
	customerToken = "customer-token"
	adminToken    = "admin-token"
	orphanToken   = "orphan-token"
)

type testEnv struct {
	router   http.Handler
	customer *model.User
	admin    *model.User
	products *mockProductService
	orders   *mockOrderService
	carts    *mockCartService
	queries  *mockOrderQueries
	healthy  bool
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	customer := &model.User{ID: uuid.New(), Name: "John", Email: "john@example.com", Role: model.Customer}
	admin := &model.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: model.Admin}

	env := &testEnv{
		customer: customer,
		admin:    admin,
		products: &mockProductService{},
		orders:   &mockOrderService{},
		carts:    &mockCartService{},
		queries:  &mockOrderQueries{},
		healthy:  true,
	}
	tokens := &mockTokens{claims: map[string]*auth.Claims{
		customerToken: {UserID: customer.ID, Role: "customer"},
		// The role claim is stale on purpose: the stored user decides.
		adminToken:  {UserID: admin.ID, Role: "customer"},
		orphanToken: {UserID: uuid.New(), Role: "admin"},
	}}
	reports := &mockReportService{table: &query.Table{
		Type:        query.OrdersReport,
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Header:      []string{"order_id", "total_amount"},
		Records:     [][]string{{"o-1", "60.00"}},
	}}

	env.router = Router(Dependencies{
		Products:     env.products,
		Carts:        env.carts,
		Orders:       env.orders,
		Users:        &mockUserService{users: map[uuid.UUID]*model.User{customer.ID: customer, admin.ID: admin}},
		OrderQueries: env.queries,
		Reports:      reports,
		Tokens:       tokens,
		Images:       &mockImages{dir: t.TempDir()},
		Health: func(context.Context) error {
			if !env.healthy {
				return errors.New("connection refused")
			}
			return nil
		},
	})
	return env
}

func (e *testEnv) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, target, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthentication(t *testing.T) {
	env := setup(t)

	t.Run("Missing token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "authentication required", decode(t, rec)["message"])
	})

	t.Run("Unknown token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/auth/me", "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Token of a deleted user", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/auth/me", orphanToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/auth/me", customerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		user := decode(t, rec)["user"].(map[string]interface{})
		assert.Equal(t, "john@example.com", user["email"])
		assert.Equal(t, "customer", user["role"])
	})
}

func TestAdminRoutes(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/api/admin/products", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/admin/products", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := setup(t)
	product := model.Product{ID: uuid.New(), Name: "Sausage", Price: decimal.RequireFromString("30"), Status: model.Active}
	env.products.products = []model.Product{product}

	rec := env.do(http.MethodGet, "/api/products/"+product.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":30.00`)

	rec = env.do(http.MethodGet, "/api/products/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	env := setup(t)
	body := map[string]string{"shipping_address": "Main street 1"}

	t.Run("Created", func(t *testing.T) {
		env.orders.order = &model.Order{
			ID:          uuid.New(),
			UserID:      env.customer.ID,
			TotalAmount: decimal.RequireFromString("60"),
			Status:      model.Pending,
		}
		env.orders.createErr = nil

		rec := env.do(http.MethodPost, "/api/orders", customerToken, body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_amount":60.00`)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	})

	t.Run("Insufficient stock", func(t *testing.T) {
		env.orders.createErr = &model.InsufficientStockError{ProductName: "Sausage", Available: 1}

		rec := env.do(http.MethodPost, "/api/orders", customerToken, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, "Sausage", resp["product"])
		assert.Equal(t, float64(1), resp["available"])
	})

	t.Run("Empty cart", func(t *testing.T) {
		env.orders.createErr = domainservice.ErrEmptyCart

		rec := env.do(http.MethodPost, "/api/orders", customerToken, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domainservice.ErrEmptyCart.Error(), decode(t, rec)["message"])
	})

	t.Run("Malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+customerToken)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetOrder(t *testing.T) {
	env := setup(t)
	stranger := uuid.New()
	env.orders.order = &model.Order{ID: uuid.New(), UserID: stranger, TotalAmount: decimal.Zero, Status: model.Paid}

	rec := env.do(http.MethodGet, "/api/orders/"+env.orders.order.ID.String(), customerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/orders/"+env.orders.order.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"GetUserOrder", "GetOrder"}, env.orders.calls)
}

func TestSubmitPaymentConflict(t *testing.T) {
	env := setup(t)
	env.orders.paymentErr = domainservice.ErrOrderCannotBeModified

	rec := env.do(http.MethodPatch, "/api/orders/"+uuid.NewString()+"/payment", customerToken,
		map[string]string{"payment_last_five": "12345"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddToCart(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodPost, "/api/cart", customerToken, map[string]interface{}{"product_id": uuid.NewString()})
	assert.Equal(t, http.StatusOK, rec.Code)

	env.carts.addErr = domainservice.ErrOutOfStock
	rec = env.do(http.MethodPost, "/api/cart", customerToken, map[string]interface{}{"product_id": uuid.NewString(), "quantity": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/cart", customerToken, map[string]interface{}{"quantity": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAllOrders(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/api/orders/admin/all?status=paid&page=2&limit=500", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.queries.filter.Status)
	assert.Equal(t, model.Paid, *env.queries.filter.Status)
	assert.Equal(t, 2, env.queries.filter.Page)
	assert.Equal(t, query.MaxPageLimit, env.queries.filter.Limit)

	pagination := decode(t, rec)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])

	rec = env.do(http.MethodGet, "/api/orders/admin/all?status=lost", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/orders/admin/all?page=two", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExports(t *testing.T) {
	env := setup(t)

	t.Run("CSV", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/admin/export/orders", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="orders-20240301-120000.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "\xEF\xBB\xBForder_id,total_amount\no-1,60.00\n", rec.Body.String())
	})

	t.Run("JSON envelope", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/admin/webhook/orders", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "orders", body["type"])
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("Unknown report", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/admin/export/products", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.healthy = false
	rec = env.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{model.ErrOrderNotFound, http.StatusNotFound},
		{model.ErrEmailTaken, http.StatusBadRequest},
		{domainservice.ErrInvalidCredentials, http.StatusBadRequest},
		{domainservice.ErrStatusTransitionRejected, http.StatusConflict},
		{model.ErrInsufficientStock, http.StatusBadRequest},
		{invalidInput("page must be a number"), http.StatusBadRequest},
		{errUnauthorized, http.StatusUnauthorized},
		{errForbidden, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, statusOf(c.err), c.err.Error())
	}
}

func TestInternalErrorIsHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("dial tcp 10.0.0.1:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func TestUploadProductImage(t *testing.T) {
	env := setup(t)

	multipartRequest := func(field string) *http.Request {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile(field, "photo.png")
		require.NoError(t, err)
		_, _ = part.Write([]byte("png bytes"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload/product", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		return req
	}

	t.Run("Success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, multipartRequest("image"))
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "/uploads/products/image.png", body["imageUrl"])
		assert.Equal(t, "image.png", body["filename"])
	})

	t.Run("Fail without image field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, multipartRequest("file"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Fail for customers", func(t *testing.T) {
		req := multipartRequest("image")
		req.Header.Set("Authorization", "Bearer "+customerToken)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
