package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"healthops/internal/core/apperror"

	_ "time/tzdata" // timezone tag must work on hosts without zoneinfo
)

var (
	once     sync.Once
	instance *validator.Validate
)

// engine returns the shared validator with custom tags registered.
func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("npi", func(fl validator.FieldLevel) bool {
			return IsNPI(fl.Field().String())
		})
		_ = v.RegisterValidation("tin", func(fl validator.FieldLevel) bool {
			return IsTIN(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Fields checks the `validate` tags of s and returns a field -> message map.
// A nil map means every constraint holds.
func Fields(s any) map[string]string {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "alphanum":
		return "must contain only letters and digits"
	case "uuid":
		return "must be a valid identifier"
	case "timezone":
		return "must be a valid IANA timezone"
	case "npi":
		return "must be a valid 10-digit NPI"
	case "tin":
		return "must be a 9-digit tax identification number"
	default:
		return "is invalid"
	}
}

// Errors accumulates field messages from several validation steps.
// The first message recorded for a field wins.
type Errors map[string]string

// Merge copies messages for fields that do not have one yet.
func (e Errors) Merge(other map[string]string) {
	for k, v := range other {
		if _, ok := e[k]; !ok {
			e[k] = v
		}
	}
}

// Add records msg for field unless one is already present.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err converts the collected messages into a validation AppError, or nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperror.NewValidationFields(map[string]string(e))
}
