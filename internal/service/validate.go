package service

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/locales/en"
    ut "github.com/go-playground/universal-translator"
    "github.com/go-playground/validator/v10"
    en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
    validate   *validator.Validate
    translator ut.Translator

    requiredTag  = "required"
    requiredText = "{0} is required"
)

func init() {
    validate = validator.New()

    _en := en.New()
    uni := ut.New(_en, _en)
    translator, _ = uni.GetTranslator("en")
    _ = en_translations.RegisterDefaultTranslations(validate, translator)

    // Use JSON tag names for errors instead of Go struct names.
    validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
        name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })

    _ = validate.RegisterTranslation(
        requiredTag, translator,
        func(t ut.Translator) error { return t.Add(requiredTag, requiredText, true) },
        func(t ut.Translator, fe validator.FieldError) string {
            s, _ := t.T(requiredTag, fe.Field())
            return s
        },
    )
}

// Validate checks v against its struct tags and returns the first failure
// as a ValidationError.
func Validate(v interface{}) error {
    err := validate.Struct(v)
    if err == nil {
        return nil
    }
    var errs validator.ValidationErrors
    if errors.As(err, &errs) && len(errs) > 0 {
        fe := errs[0]
        return invalid(fe.Field(), fe.Translate(translator))
    }
    return invalid("", err.Error())
}
