// Package validation provides the echo.Validator used by every handler.
package validation

import (
	"accounts-api/internal/password"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// New 建立 validator 並註冊自訂規則 goodpassword
func New() *CustomValidator {
	v := validator.New()
	// RegisterValidation only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("goodpassword", func(fl validator.FieldLevel) bool {
		return password.Validate(fl.Field().String()) == nil
	})
	return &CustomValidator{validator: v}
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
