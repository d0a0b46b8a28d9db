package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/validator"
)

// Classifier maps a domain error to an HTTP error. ok is false when the
// classifier does not recognize err.
type Classifier func(err error) (httpErr HTTPError, ok bool)

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
}

// Classify resolves err into status, code and client-safe message.
func Classify(err error, classifiers ...Classifier) ErrorInfo {
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return ErrorInfo{
			StatusCode: http.StatusBadRequest,
			Code:       "validation_failed",
			Message:    "validation failed",
			Details:    ve.Fields(),
		}
	}

	for _, classify := range classifiers {
		if httpErr, ok := classify(err); ok {
			return infoFor(httpErr, err)
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return infoFor(httpErr, err)
	}

	return ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrInternalServerError.Key,
		Message:    "an error occurred processing your request",
	}
}

func infoFor(httpErr HTTPError, err error) ErrorInfo {
	info := ErrorInfo{StatusCode: httpErr.Code, Code: httpErr.Key, Message: httpErr.Key}
	if httpErr.Code < http.StatusInternalServerError {
		info.Message = err.Error()
	}
	return info
}

// NewErrorHandler logs the error and writes the JSON error envelope.
func NewErrorHandler(log *slog.Logger, classifiers ...Classifier) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		info := Classify(err, classifiers...)

		level := slog.LevelError
		if info.StatusCode < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		r := ctx.Request()
		log.LogAttrs(ctx, level, "request error",
			logger.Error(err),
			logger.UserID(ctx.UserID()),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		resp := jsonResponse{
			status: info.StatusCode,
			body: JSONResponse{Error: &ErrorDetail{
				Code:    info.Code,
				Message: info.Message,
				Details: info.Details,
			}},
		}
		_ = resp.Render(ctx.ResponseWriter(), r)
	}
}
