package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("missing session token")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrTokenExpired       = errors.New("session expired")
	ErrInsufficientRole   = errors.New("insufficient role")
)

// Authentication & Authorization Error Constructors

// NewInvalidCredentialsError never says which of username or password was wrong.
func NewInvalidCredentialsError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials),
	}
}

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "Login required",
		Field:      "authorization",
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidToken),
		Details:    "Invalid session token",
		Field:      "authorization",
	}
}

func NewTokenExpiredError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenExpired),
		Details:    "Session has expired, please log in again",
		Field:      "authorization",
	}
}

func NewInsufficientRoleError(requiredRole string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrInsufficientRole),
		Details:    fmt.Sprintf("Insufficient role. Required: %s", requiredRole),
		Field:      "authorization",
	}
}

// Authentication & Authorization Error Type Checkers
func IsInvalidCredentialsError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

