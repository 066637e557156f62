// Package validator plugs go-playground validation into echo's binding flow.
package validator

import (
	playground "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// RequestValidator implements echo.Validator over go-playground/validator.
type RequestValidator struct {
	validate *playground.Validate
}

// New creates a RequestValidator with the default tag rules.
func New() *RequestValidator {
	return &RequestValidator{validate: playground.New()}
}

// Validate checks the bound request struct against its validate tags.
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return errors.Wrap(err, "request validation failed")
	}

	return nil
}
