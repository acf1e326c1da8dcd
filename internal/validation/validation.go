package validation

import (
	"sync"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates v against its `validate` tags. Failures wrap ErrInvalidPayload.
func Struct(v any) error {
	if err := instance().Struct(v); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidPayload, "%s", err.Error())
	}
	return nil
}
