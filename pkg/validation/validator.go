package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const strongPasswordRule = "min=8,max=128,containsany=!@#$%^&*()-_=+?.,containsany=0123456789,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=abcdefghijklmnopqrstuvwxyz"

var (
	enumsMu sync.RWMutex
	enums   = map[string][]string{}

	standalone     *validator.Validate
	standaloneOnce sync.Once
)

// FieldError is one entry of the errors list returned on 400 responses.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON (or form) tag names in errors.
// - Registers alias tags for common validations and every registered enum.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// RegisterEnum makes `binding:"<name>"` accept exactly values.
// Call before Init.
func RegisterEnum(name string, values ...string) {
	enumsMu.Lock()
	defer enumsMu.Unlock()
	enums[name] = append([]string(nil), values...)
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	v.RegisterAlias("pwd", "min=8")
	v.RegisterAlias("strongpwd", strongPasswordRule)
	v.RegisterAlias("uuid4", "uuid")

	enumsMu.RLock()
	defer enumsMu.RUnlock()
	for name, values := range enums {
		v.RegisterAlias(name, "oneof="+strings.Join(values, " "))
	}
}

// Password checks plain against the strong password policy outside of request binding.
func Password(plain string) error {
	standaloneOnce.Do(func() {
		standalone = validator.New()
		configure(standalone)
	})
	return standalone.Var(plain, "strongpwd")
}

// ToDetails converts validation/binding errors into a list of field errors.
func ToDetails(err error) []FieldError {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) {
		return []FieldError{{Field: "payload", Tag: "json", Message: "invalid json"}}
	}
	if errors.As(err, &ute) {
		return []FieldError{{Field: ute.Field, Tag: "type", Message: "must be of type " + ute.Type.String()}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Value:   valueString(fe),
				Message: formatFieldError(fe),
			})
		}
		return out
	}

	return []FieldError{{Field: "payload", Tag: "invalid", Message: "invalid payload"}}
}

func valueString(fe validator.FieldError) string {
	if strings.Contains(strings.ToLower(fe.Field()), "password") {
		return ""
	}
	switch v := fe.Value().(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	enumsMu.RLock()
	values, isEnum := enums[tag]
	enumsMu.RUnlock()
	if isEnum {
		return "must be one of: " + strings.Join(values, ", ")
	}

	switch tag {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "eqfield":
		return "must be equal to " + param + " field"
	case "nefield":
		return "must not be equal to " + param + " field"
	case "unique":
		return "must contain unique items"
	case "numeric":
		return "must be numeric"
	case "pwd":
		return "min length 8"
	case "strongpwd":
		return "must be at least 8 characters with uppercase, lowercase, number and special character"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
