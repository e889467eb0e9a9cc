package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// External service errors
var (
	ErrExternalService    = errors.New("external service error")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrServiceUnreachable = errors.New("service unreachable")
	ErrServiceTimeout     = errors.New("service timeout")
	ErrAccountNotFound    = errors.New("account not found")
	ErrConfig             = errors.New("configuration error")
	ErrEnvironmentVar     = errors.New("missing environment variable")
)

func NewRateLimitError(service string, retryAfter time.Duration) *ApiErr {
	details := fmt.Sprintf("%s rate limit reached", service)
	if retryAfter > 0 {
		details = fmt.Sprintf("%s, retry after %v", details, retryAfter)
	}
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        fmt.Errorf("%w: %w", ErrExternalService, ErrRateLimit),
		Details:    details,
		Field:      service,
	}
}

func NewServiceUnreachableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        fmt.Errorf("%w: %w", ErrExternalService, ErrServiceUnreachable),
		Details:    fmt.Sprintf("Could not reach %s", service),
		Cause:      cause,
		Field:      service,
	}
}

func NewServiceTimeoutError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusGatewayTimeout,
		err:        fmt.Errorf("%w: %w", ErrExternalService, ErrServiceTimeout),
		Details:    fmt.Sprintf("%s did not answer in time", service),
		Cause:      cause,
		Field:      service,
	}
}

func NewAccountNotFoundError(service, account string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%w: %w", ErrExternalService, ErrAccountNotFound),
		Details:    fmt.Sprintf("%s account '%s' not found", service, account),
		Field:      service,
	}
}

func NewExternalServiceError(service string, message string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrExternalService,
		Details:    message,
		Cause:      cause,
		Field:      service,
	}
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfig,
		Details:    fmt.Sprintf("Invalid configuration for %s", configName),
		Cause:      cause,
		Field:      configName,
	}
}

func NewEnvironmentVariableError(varName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrEnvironmentVar,
		Details:    fmt.Sprintf("Environment variable %s is required", varName),
		Field:      varName,
	}
}

func IsExternalServiceError(err error) bool {
	return errors.Is(err, ErrExternalService)
}

func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}
