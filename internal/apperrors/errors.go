package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a bad or missing credential.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidOTP indicates the presented password-reset code does not match the pending one.
var ErrInvalidOTP = errors.New("invalid OTP code")

// ErrOTPExpired indicates the pending password-reset code is past its expiry.
var ErrOTPExpired = errors.New("OTP has expired")

// Token verification failures.
var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
)

// ErrMailDelivery indicates the mail dispatcher could not deliver a message.
var ErrMailDelivery = errors.New("mail delivery failed")

// Kinds carried by AppError; they end up as the "code" field of the error envelope.
const (
	KindValidation         = "VALIDATION_ERROR"
	KindConflict           = "CONFLICT"
	KindNotFound           = "NOT_FOUND"
	KindUnauthorized       = "UNAUTHORIZED"
	KindInvalidOTP         = "INVALID_OTP"
	KindOTPExpired         = "OTP_EXPIRED"
	KindForbidden          = "FORBIDDEN"
	KindInternal           = "INTERNAL_ERROR"
	KindServiceUnavailable = "SERVICE_UNAVAILABLE"
	KindTooManyRequests    = "TOO_MANY_REQUESTS"
)

// AppError is the single structured error raised by the service layer.
// Code is the HTTP status the boundary should answer with.
type AppError struct {
	Code    int    `json:"-"`
	Kind    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause so errors.Is keeps matching sentinels.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports a match against the status-level sentinels, so a 401 caused by an
// expired OTP still satisfies errors.Is(err, ErrUnauthorized).
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrDuplicate:
		return e.Code == http.StatusConflict
	case ErrValidation:
		return e.Code == http.StatusBadRequest
	}
	return false
}

// NewAppError builds an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Kind: kindForStatus(code), Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: message, Err: ErrValidation}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: message, Err: ErrDuplicate}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: message, Err: ErrNotFound}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: message, Err: ErrUnauthorized}
}

// NewUnauthorizedErrorWithCause keeps a more specific sentinel (token or OTP failure) as the cause.
func NewUnauthorizedErrorWithCause(message string, cause error) *AppError {
	kind := KindUnauthorized
	switch {
	case errors.Is(cause, ErrInvalidOTP):
		kind = KindInvalidOTP
	case errors.Is(cause, ErrOTPExpired):
		kind = KindOTPExpired
	}
	return &AppError{Code: http.StatusUnauthorized, Kind: kind, Message: message, Err: cause}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: message, Err: ErrForbidden}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: message}
}

// NewInternalServerErrorWithCause wraps a storage, hashing or mail failure.
func NewInternalServerErrorWithCause(message string, cause error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: message, Err: cause}
}

func NewServiceUnavailableError(message string) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Kind: KindServiceUnavailable, Message: message}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	case http.StatusServiceUnavailable:
		return KindServiceUnavailable
	default:
		return KindInternal
	}
}

// FromError converts any error into an AppError. Bare sentinels map to their
// natural status; everything else is treated as an internal failure.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError("Resource not found")
	case errors.Is(err, ErrDuplicate):
		return NewConflictError("Resource already exists")
	case errors.Is(err, ErrValidation):
		return NewValidationError("Invalid input")
	case errors.Is(err, ErrInvalidOTP), errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrTokenExpired), errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrMalformedToken):
		return NewUnauthorizedErrorWithCause(err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("Unauthorized")
	case errors.Is(err, ErrForbidden):
		return NewForbiddenError("Forbidden")
	default:
		return NewInternalServerErrorWithCause("Internal server error", err)
	}
}
