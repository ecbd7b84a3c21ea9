package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// validate and trans are the singleton validator and English translator.
	validate *govalidator.Validate
	trans    ut.Translator
	once     sync.Once
)

// Setup builds the validator with English translations.
// Safe to call more than once; the helpers below call it lazily.
func Setup() {
	once.Do(func() {
		validate = govalidator.New(govalidator.WithRequiredStructEnabled())

		// Use the csv tag name for field names in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("csv"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, trans)
	})
}

// TranslateErrors takes a validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Struct validates dst against its validate tags.
// Returns nil on success or a translated field error map on failure.
func Struct(dst interface{}) map[string]string {
	Setup()
	if err := validate.Struct(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Email checks that addr is a single well-formed email address.
func Email(addr string) error {
	Setup()
	return validate.Var(addr, "required,email")
}

// Join flattens a field error map into one deterministic message.
func Join(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, "; ")
}
