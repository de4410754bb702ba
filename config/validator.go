package config

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates a configuration struct.
type Validator interface {
	Struct(target any) error
}

// DefaultValidator is the shared validator instance.
var DefaultValidator Validator = newValidator()

type validatorImpl struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newValidator() *validatorImpl {
	v := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	return &validatorImpl{
		validate: v,
		trans:    trans,
	}
}

// Struct validates the target and returns translated error messages.
func (v *validatorImpl) Struct(target any) error {
	err := v.validate.Struct(target)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fe.Translate(v.trans))
	}

	return errors.New(strings.Join(messages, "; "))
}
