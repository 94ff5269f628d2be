package core

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validate checks struct payloads against their `validate` tags.
	Validate *validator.Validate

	// Translator renders validation errors as human readable messages.
	Translator ut.Translator
)

func init() {
	Validate = validator.New()

	// report the json field name rather than the Go field name
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	Translator, _ = uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(Validate, Translator); err != nil {
		log.Fatalf("core.validators: %v", err)
	}
}

// RegisterCustomTranslation attaches a message to a custom validation tag.
func RegisterCustomTranslation(tag, message string) {
	err := Validate.RegisterTranslation(
		tag,
		Translator,
		func(t ut.Translator) error { return t.Add(tag, message, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.(error).Error()
			}
			return msg
		},
	)
	if err != nil {
		log.Fatalf("core.RegisterCustomTranslation(%s): %v", tag, err)
	}
}

// TranslateValidatorErrors converts validator errors into the app's
// ValidationError. Non-validator errors pass through unchanged.
func TranslateValidatorErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fieldErrs := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		field := fe.Field()
		fieldErrs = append(fieldErrs, FieldError{
			Code:    fe.Tag(),
			Field:   field,
			Message: fe.Translate(Translator),
		})
	}
	return NewValidationError(fieldErrs...)
}
