package waitlist

import (
	"github.com/akeren/launchwait/internal/models"
	"github.com/akeren/launchwait/pkg/emailaddr"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// RegisterValidation only errors on an empty tag.
	_ = v.RegisterValidation("waitlist_email", func(fl validator.FieldLevel) bool {
		return emailaddr.IsValid(fl.Field().String())
	})
	_ = v.RegisterValidation("waitlist_interest", func(fl validator.FieldLevel) bool {
		return models.IsKnownInterest(fl.Field().String())
	})

	return v
}
