package validator

import (
	"phonics-coach/internal/words"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validateTarget accepts a practice target: a letter in the word bank or a
// known phoneme-pair course id such as "V-B".
func validateTarget(fl validator.FieldLevel) bool {
	return words.IsValidTarget(fl.Field().String())
}

// validateLetter accepts a single letter present in the word bank.
func validateLetter(fl validator.FieldLevel) bool {
	return words.Has(fl.Field().String())
}

// RegisterCustomValidators registers all custom validators with gin's validator
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("target", validateTarget)
		_ = v.RegisterValidation("letter", validateLetter)
	}
}
