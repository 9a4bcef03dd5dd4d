package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mansoorceksport/subtrack/internal/domain"
)

var validate = validator.New()

// normalizeInput trims text fields and enforces the required-field rules.
// Errors wrap domain.ErrValidation.
func normalizeInput(input domain.SubscriptionInput) (domain.SubscriptionInput, error) {
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.PlanType = strings.TrimSpace(input.PlanType)
	input.Duration = strings.TrimSpace(input.Duration)
	if input.Notes != nil {
		notes := strings.TrimSpace(*input.Notes)
		if notes == "" {
			input.Notes = nil
		} else {
			input.Notes = &notes
		}
	}

	if err := validate.Struct(input); err != nil {
		return input, validationError(err)
	}
	if input.StartDate != nil && input.StartDate.IsZero() {
		return input, fmt.Errorf("%w: start_date is not a valid date", domain.ErrValidation)
	}
	return input, nil
}

// validateDuration checks a duration entry before it reaches the vocabulary
func validateDuration(entry domain.DurationOption) error {
	if err := validate.Struct(entry); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fieldName(fe)))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fieldName(fe), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must not be negative", fieldName(fe)))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fieldName(fe)))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

var fieldNames = map[string]string{
	"ClientName":         "client_name",
	"PlanType":           "plan_type",
	"Duration":           "duration",
	"CustomDurationDays": "custom_duration",
	"Cost":               "cost",
	"Label":              "label",
	"Value":              "value",
	"Days":               "days",
}

func fieldName(fe validator.FieldError) string {
	if name, ok := fieldNames[fe.StructField()]; ok {
		return name
	}
	return strings.ToLower(fe.Field())
}
