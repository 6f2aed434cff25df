package render

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("strongpw", validateStrongPassword)
	_ = validate.RegisterValidation("alphaspace", validateAlphaSpace)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Password policy: at least 8 characters, at least one uppercase letter
func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	for _, r := range password {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// Display names carry letters and spaces only
func validateAlphaSpace(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}

	for _, r := range value {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}
