package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

// Database & Storage Specific Errors
var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrTransactionFailed         = errors.New("transaction failed")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
	ErrStorageFailed             = errors.New("storage operation failed")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError creates a new database error with details about the operation.
// Errors that are already *ApiErr are returned unchanged.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	// Check for common database errors and provide more specific messages
	if cause != nil {
		errStr := cause.Error()
		switch {
		case errors.Is(cause, ErrUniqueConstraintViolation),
			strings.Contains(errStr, "duplicate key"),
			strings.Contains(errStr, "UNIQUE constraint failed"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
				Details:    details,
				Cause:      cause,
			}
		case errors.Is(cause, ErrForeignKeyConstraint),
			strings.Contains(errStr, "foreign key constraint"),
			strings.Contains(errStr, "FOREIGN KEY constraint failed"):
			return &ApiErr{
				StatusCode: http.StatusBadRequest,
				err:        fmt.Errorf("invalid reference in %s: %w", entity, ErrForeignKeyConstraint),
				Details:    "The referenced resource does not exist or cannot be linked",
				Cause:      cause,
			}
		case errors.Is(cause, ErrNotFound), strings.Contains(errStr, "record not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "failed to connect"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrDatabaseConnection,
				Details:    "Unable to connect to database",
				Cause:      cause,
			}
		}
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func NewUniqueConstraintViolationError(entity, field string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%w: %w", ErrConflict, ErrUniqueConstraintViolation),
		Details:    fmt.Sprintf("%s with this %s already exists", entity, field),
		Cause:      cause,
		Field:      field,
	}
}

func NewTransactionFailedError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrTransactionFailed,
		Details:    fmt.Sprintf("Transaction failed during %s", operation),
		Cause:      cause,
		Field:      "transaction",
	}
}

func NewStorageError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageFailed,
		Details:    fmt.Sprintf("Could not %s", operation),
		Cause:      cause,
		Field:      "image",
	}
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageFailed)
}
