package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/file"
	"github.com/dmitrymomot/storefront/svc/orders"
	"github.com/dmitrymomot/storefront/svc/returns"
)

// Classifiers maps domain errors to HTTP errors for handler.NewErrorHandler.
func Classifiers() []handler.Classifier {
	return []handler.Classifier{
		classifyNotFound,
		classifyEligibility,
		classifyTransition,
		classifyUpload,
	}
}

func classifyNotFound(err error) (handler.HTTPError, bool) {
	if errors.Is(err, orders.ErrOrderNotFound) || errors.Is(err, returns.ErrRequestNotFound) {
		return handler.ErrNotFound, true
	}
	return handler.HTTPError{}, false
}

func classifyEligibility(err error) (handler.HTTPError, bool) {
	if errors.Is(err, orders.ErrNotEligible) {
		return handler.NewHTTPError(http.StatusUnprocessableEntity, "not_eligible"), true
	}
	return handler.HTTPError{}, false
}

func classifyTransition(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, returns.ErrInvalidTransition):
		return handler.NewHTTPError(http.StatusConflict, "invalid_transition"), true
	case errors.Is(err, orders.ErrInvalidStatus):
		return handler.NewHTTPError(http.StatusConflict, "invalid_status"), true
	case errors.Is(err, orders.ErrStatusConflict):
		return handler.ErrConflict, true
	}
	return handler.HTTPError{}, false
}

func classifyUpload(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, file.ErrFileTooLarge):
		return handler.NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large"), true
	case errors.Is(err, file.ErrMIMETypeNotAllowed), errors.Is(err, file.ErrEmptyUpload):
		return handler.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_file"), true
	}
	return handler.HTTPError{}, false
}
