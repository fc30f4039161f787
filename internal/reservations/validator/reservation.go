package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"stablebook/pkg/logger"
	"stablebook/pkg/model"
)

var paymentMethodRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,31}$`)

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
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors for the failure envelope.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

type ReservationValidator struct {
	validate     *validator.Validate
	maxBatchSize int
	logger       *logger.Logger
}

func NewReservationValidator(log *logger.Logger, maxBatchSize int) *ReservationValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("payment_method", validatePaymentMethod); err != nil {
		log.Fatal("Failed to register 'payment_method' validator", "error", err)
	}

	return &ReservationValidator{
		validate:     v,
		maxBatchSize: maxBatchSize,
		logger:       log,
	}
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return paymentMethodRegex.MatchString(fl.Field().String())
}

// ValidateBatch checks the request schema. Date parsing and business rules
// are left to the service.
func (v *ReservationValidator) ValidateBatch(req *model.BatchRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if v.maxBatchSize > 0 && len(req.Riders) > v.maxBatchSize {
		return ValidationErrors{{
			Field:   "riders",
			Message: fmt.Sprintf("riders must contain at most %d pairs, got %d", v.maxBatchSize, len(req.Riders)),
		}}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	validationErrors := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		field := fieldPath(err)
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must contain at least %s item(s)", field, err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", field)
		case "payment_method":
			message = fmt.Sprintf("%s must be a lowercase payment method name such as cash or card", field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

// fieldPath drops the root struct name: "BatchRequest.riders[1].horse_id"
// becomes "riders[1].horse_id".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
