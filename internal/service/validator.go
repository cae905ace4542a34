package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/gym-schedule-api/internal/models"
)

// NewValidator returns a validator with the schedule-specific rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerScheduleValidations(v)
	return v
}

// registerScheduleValidations is safe to call on an already configured validator.
func registerScheduleValidations(v *validator.Validate) {
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := models.ParseClockTime(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.Weekday(fl.Field().Int()).Valid()
	})
}
