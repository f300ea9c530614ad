// Package validate provides the shared struct validator with the ledger's
// custom tags registered.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"ledger/internal/core"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Get returns the process-wide validator. It is safe for concurrent use.
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so errors match the wire format.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validateNotBlank)
		_ = v.RegisterValidation("category", validateCategory)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		instance = v
	})
	return instance
}

// Currency checks code against ISO 4217.
func Currency(code string) error {
	if err := Get().Var(code, "required,iso4217"); err != nil {
		return fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return nil
}

// Describe flattens validator errors into one readable line.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateCategory(fl validator.FieldLevel) bool {
	return core.Category(fl.Field().String()).Valid()
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch core.Kind(fl.Field().String()) {
	case core.Income, core.Expense:
		return true
	}
	return false
}
