package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"
)

// Error taxonomy. Every error returned by a service wraps exactly one of these;
// handlers map them to HTTP status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Referenced entities, shared by the services that look them up.
var (
	ErrCustomerNotFound   = fmt.Errorf("customer %w", ErrNotFound)
	ErrEmployeeNotFound   = fmt.Errorf("employee %w", ErrNotFound)
	ErrSupplierNotFound   = fmt.Errorf("supplier %w", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)
	ErrDishNotFound       = fmt.Errorf("dish %w", ErrNotFound)
	ErrMenuNotFound       = fmt.Errorf("menu %w", ErrNotFound)
)

const dateLayout = "2006-01-02"

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// validateDate checks an optional YYYY-MM-DD field.
func validateDate(field string, value *string) error {
	if utils.IsEmptyPtr(value) {
		return nil
	}
	if _, err := time.Parse(dateLayout, *value); err != nil {
		return validationErrorf("%s must use the YYYY-MM-DD format", field)
	}
	return nil
}

// trimmedOrNil drops blank optional strings so they are stored as NULL.
func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	return utils.NewNullString(strings.TrimSpace(*value))
}

// NormalizePage applies the default page (1) and page size (10, at most 100).
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// referenceError converts a foreign key violation into the not-found error of the
// referenced entity. refs maps a constraint-name fragment to that entity's error.
func referenceError(err error, fallback error, refs map[string]error) error {
	if !errors.Is(err, repositories.ErrForeignKeyViolation) {
		return err
	}
	for fragment, refErr := range refs {
		if strings.Contains(err.Error(), fragment) {
			return refErr
		}
	}
	return fallback
}
