package utils

import (
	"reflect"
	"strings"

	apperrors "github.com/examind/exam-service/internal/errors"
	"github.com/examind/exam-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation with the domain's
// custom rules and converts failures to apperrors.ValidationErrors.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate runs struct-tag validation and returns ValidationErrors on
// failure so callers can report per-field details.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("section_type", validateSectionType)
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("focus_event_type", validateFocusEventType)

	// Report json field names in error messages instead of Go names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSectionType(fl validator.FieldLevel) bool {
	return models.SectionType(fl.Field().String()).Valid()
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validateFocusEventType(fl validator.FieldLevel) bool {
	return models.FocusEventType(fl.Field().String()).Valid()
}
