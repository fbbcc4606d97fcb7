package transport

import (
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
	"storefront/pkg/storefront/infrastructure/upload"
)

var (
	errUnauthorized = errors.New("authentication required")
	errForbidden    = errors.New("admin access required")
	errInvalidInput = errors.New("invalid request")
	errNotFound     = errors.New("not found")
)

func invalidInput(message string) error {
	return errors.Wrap(errInvalidInput, message)
}

var notFound = []error{
	errNotFound,
	model.ErrProductNotFound,
	model.ErrOrderNotFound,
	model.ErrCartItemNotFound,
	model.ErrUserNotFound,
	query.ErrUnknownReport,
}

var badRequest = []error{
	errInvalidInput,
	model.ErrInsufficientStock,
	model.ErrInvalidOrderStatus,
	model.ErrInvalidProductState,
	model.ErrEmailTaken,
	model.ErrUnknownSetting,
	domainservice.ErrOutOfStock,
	domainservice.ErrInvalidQuantity,
	domainservice.ErrEmptyCart,
	domainservice.ErrShippingAddressRequired,
	domainservice.ErrInvalidPaymentCode,
	domainservice.ErrProductNameRequired,
	domainservice.ErrNegativePrice,
	domainservice.ErrNegativeStock,
	domainservice.ErrNameRequired,
	domainservice.ErrInvalidEmail,
	domainservice.ErrInvalidBirthDate,
	domainservice.ErrPasswordTooShort,
	domainservice.ErrInvalidCredentials,
	upload.ErrTooLarge,
	upload.ErrNotImage,
	upload.ErrEmpty,
}

var conflict = []error{
	domainservice.ErrOrderCannotBeModified,
	domainservice.ErrStatusTransitionRejected,
}

type errorResponse struct {
	Message   string `json:"message"`
	Product   string `json:"product,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message:   stockErr.Error(),
			Product:   stockErr.ProductName,
			Available: &available,
		})
		return
	}

	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Errorf("%+v", err)
		writeMessage(w, status, "internal server error")
		return
	}
	writeMessage(w, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, conflict):
		return http.StatusConflict
	case isAny(err, badRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func unauthorizedIfMissing(err error) error {
	if errors.Is(err, model.ErrUserNotFound) {
		return errUnauthorized
	}
	return err
}
