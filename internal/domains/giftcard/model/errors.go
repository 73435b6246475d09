package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrGiftCardNotFound   = errors.New("gift card not found")
	ErrDuplicateCode      = errors.New("gift card code already exists")
	ErrOrderStateNotFound = errors.New("order state not found")
)

// ErrorCode constants
const (
	ErrCodeNotFound       = "GIFTCARD_NOT_FOUND"
	ErrCodeDuplicate      = "GIFTCARD_DUPLICATE_CODE"
	ErrCodeInvalidInput   = "GIFTCARD_INVALID_INPUT"
	ErrCodeNotRedeemable  = "GIFTCARD_NOT_REDEEMABLE"
	ErrCodeSessionMissing = "GIFTCARD_SESSION_MISSING"
	ErrCodeInternal       = "SYS_INTERNAL_ERROR"
)

// AppError carries an error code and HTTP status alongside the message.
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	HTTPStatus int         `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

func NewValidationError(message string, details interface{}) *AppError {
	return &AppError{
		Code:       ErrCodeInvalidInput,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}
