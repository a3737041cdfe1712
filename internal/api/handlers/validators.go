package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dhima/inventory-activity/internal/api/response"
)

var (
	actionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,63}$`)
	registerOnce    sync.Once
)

// RegisterValidators installs the custom binding tags used by request DTOs.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("action_id", func(fl validator.FieldLevel) bool {
			return actionIDPattern.MatchString(fl.Field().String())
		})
	})
}

// fieldName reports fields by their query or JSON name instead of the Go name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

// bindingErrors turns a binding failure into field-level messages.
// ok is false when err is not a validation failure.
func bindingErrors(err error) ([]response.ValidationError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := make([]response.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, response.ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out, true
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "action_id":
		return "must be an action identifier such as SUPPLIER_CREATED"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
