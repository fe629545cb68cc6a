package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

const (
	notBlankTag  = "notblank"
	notBlankText = "{0} is required"
	requiredText = "{0} is required"
	isoDateTag   = "isodate"
	isoDateText  = "{0} must be an ISO-8601 timestamp"
)

func setup() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON field names rather than Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)

	registerTranslation(notBlankTag, notBlankText, false)
	registerTranslation("required", requiredText, true)
	registerTranslation(isoDateTag, isoDateText, false)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Validator exposes the shared instance for callers that need to register
// their own rules.
func Validator() *validator.Validate {
	once.Do(setup)
	return validate
}

// Struct validates s against its `validate` tags and converts failures into
// a validation AppError whose details list every failing field.
func Struct(s interface{}) *apperrors.AppError {
	once.Do(setup)

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	details := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: fe.Translate(translator),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}

	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: details})
}
