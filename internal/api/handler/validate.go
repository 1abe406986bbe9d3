package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// validationMessage flattens a validator error into one readable message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	return strings.Join(lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s fails %s validation", fe.Field(), fe.Tag())
	}), "; ")
}
