package serverutils

import (
	"fmt"
	"strings"

	"ai-organizer-be/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and converts failures into the
// VALIDATION_ERROR taxonomy so nothing downstream mutates state.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", ve.Field(), ve.Tag()))
			}
			return apperrors.Validation("invalid request: " + strings.Join(fields, ", "))
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}
