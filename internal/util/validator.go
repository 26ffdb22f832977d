package util

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// language codes such as "en", "ko" or "zh-Hans"
var langCodePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

func ValidateLangCode(fl validator.FieldLevel) bool {
	return langCodePattern.MatchString(fl.Field().String())
}

// RegisterValidators installs the custom binding rules on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("langcode", ValidateLangCode)
}
