// Package validate applies schema-level validation at usecase
// boundaries, converting validator failures into apperr
// ValidationErrors so callers never see the library's own error types.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// sku: immutable product identifier, [A-Z0-9-]+ and at most 50 chars
	_ = val.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) <= 50 && skuPattern.MatchString(s)
	})
	return val
}

// Struct validates a dto input struct against its tags.
func Struct(input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	appErr := apperr.Validation("")
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		appErr.With(fe.Field(), fe.Tag())
	}
	appErr.Message = "invalid input: " + strings.Join(msgs, ", ")
	return appErr
}
