package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"equiprent/pkg/logger"
	"equiprent/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type OrderValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewOrderValidator(log *logger.Logger) *OrderValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		log.Fatal("Failed to register 'isodate' validator",
			"error", err,
		)
	}

	log.Debug("Order validator initialized successfully")

	return &OrderValidator{
		validate: v,
		logger:   log,
	}
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

func (v *OrderValidator) Validate(order *model.Order) error {
	if err := v.validate.Struct(order); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !order.IsEquipmentBound() && order.EquipmentID != "" {
		return ValidationErrors{
			ValidationError{
				Field:   "EquipmentID",
				Message: "equipmentId must be empty for construction orders",
			},
		}
	}

	return nil
}

func (v *OrderValidator) ValidateStatusUpdate(update *model.OrderStatusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.ReservationType == model.ReservationTypeTime && update.Quantity > 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Quantity",
				Message: "quantity applies only to days, weeks or months reservations",
			},
		}
	}
	if model.IsDayScale(update.ReservationType) && update.EndTime != "" {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "endTime applies only to time reservations",
			},
		}
	}

	return nil
}

func (v *OrderValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required", "required_unless":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +12125551234)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		case "isodate":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
