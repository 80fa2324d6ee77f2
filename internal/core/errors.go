package core

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrValidation       ErrorCode = "WSD_VALIDATION"
	ErrBadRequest       ErrorCode = "WSD_BAD_REQUEST"
	ErrNotFound         ErrorCode = "WSD_NOT_FOUND"
	ErrConflict         ErrorCode = "WSD_CONFLICT"
	ErrTransport        ErrorCode = "WSD_TRANSPORT"
	ErrSessionTransport ErrorCode = "WSD_SESSION_TRANSPORT"
	ErrBusy             ErrorCode = "WSD_BUSY"
	ErrDeclined         ErrorCode = "WSD_DECLINED"
	ErrInternal         ErrorCode = "WSD_INTERNAL"
)

// HTTPStatus returns the HTTP status code for this error code.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrValidation, ErrBadRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrConflict, ErrBusy:
		return 409
	case ErrTransport, ErrSessionTransport:
		return 502
	default:
		return 500
	}
}

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// WrapAppError attaches an underlying cause to a coded error.
func WrapAppError(code ErrorCode, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrInternal if there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Message returns the user-facing text of err: the AppError message when
// there is one, otherwise err.Error().
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
