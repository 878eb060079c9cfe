// Package apierror provides the error envelope for every 4xx/5xx response and
// the mapping from domain errors to status codes.
package apierror

import (
	"errors"
	"net/http"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// APIError is the envelope for errors without field detail
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field reasons
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(detail string, fields map[string]string) *ValidationError {
	if fields == nil {
		fields = map[string]string{}
	}
	return &ValidationError{Detail: detail, Fields: fields}
}

// FromError maps a service error to a status code and response body. Errors
// of unknown kind become a 500 with a generic message.
func FromError(err error) (int, interface{}) {
	var (
		unavailable *entities.StorageUnavailableError
		stock       *entities.InsufficientStockError
		components  *entities.InsufficientComponentsError
		quantity    *entities.InvalidQuantityError
		validation  *entities.ValidationError
		notFound    *entities.NotFoundError
	)
	switch {
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, New(unavailable.Error())
	case errors.As(err, &stock):
		return http.StatusConflict, New(stock.Error())
	case errors.As(err, &components):
		return http.StatusConflict, New(components.Error())
	case errors.As(err, &quantity):
		return http.StatusUnprocessableEntity, NewValidation(quantity.Error(), map[string]string{quantity.Field: quantity.Value})
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, NewValidation(validation.Detail, validation.Fields)
	case errors.As(err, &notFound):
		return http.StatusNotFound, New(notFound.Error())
	default:
		return http.StatusInternalServerError, New("internal server error")
	}
}
