package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures so callers can map them without reading messages.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// ErrInvalidRange marks availability date ranges that are malformed or too wide.
var ErrInvalidRange = errors.New("invalid date range")

// AppError is the error type every engine component returns.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) error { return newAppError(KindUnauthenticated, msg, nil) }
func Forbidden(msg string) error       { return newAppError(KindForbidden, msg, nil) }
func NotFound(msg string) error        { return newAppError(KindNotFound, msg, nil) }
func Validation(msg string) error      { return newAppError(KindValidation, msg, nil) }
func Conflict(msg string) error        { return newAppError(KindConflict, msg, nil) }

// InvalidRange is a validation failure that also matches ErrInvalidRange.
func InvalidRange(msg string) error { return newAppError(KindValidation, msg, ErrInvalidRange) }

// Unavailable wraps a storage or timeout failure. Callers may retry with backoff.
func Unavailable(msg string, err error) error { return newAppError(KindUnavailable, msg, err) }

// Internal wraps an unexpected failure.
func Internal(msg string, err error) error { return newAppError(KindInternal, msg, err) }

// KindOf extracts the kind of err. Context expiry counts as Unavailable.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindUnavailable
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusFor maps an error onto its HTTP status.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to put in a response body.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	if KindOf(err) == KindUnavailable {
		return "service temporarily unavailable, retry later"
	}
	return "Internal Server Error"
}

// RespondError writes {"error": msg} with the mapped status and aborts the chain.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	logger := GetLogger().With(
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.String("kind", KindOf(err).String()),
		zap.Error(err),
	)
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		logger.Error("request failed")
	case status == http.StatusServiceUnavailable:
		logger.Warn("storage unavailable")
	default:
		// conflicts and client errors are routine traffic
		logger.Info("request rejected")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": PublicMessage(err)})
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			}
		}()
		c.Next()
	}
}
