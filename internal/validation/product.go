// Package validation checks candidate product records before they reach the
// store. Rules are expressed as validator struct tags; failures are reported
// as a field name to message mapping the client can display as-is.
package validation

import (
	"errors"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProductInput is a client-supplied, not yet validated product record.
// Price stays a raw JSON value so numeric strings and numbers are both accepted.
type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Brand       string `json:"brand" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Price       any    `json:"price" validate:"required,price"`
	Description string `json:"description" validate:"required"`
}

// Result holds the field-level errors of a single validation run.
type Result struct {
	Errors map[string]string
}

// HasErrors reports whether at least one rule fired.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

var messages = map[string]string{
	"name":        "The name is required",
	"brand":       "The brand is required",
	"category":    "The category is required",
	"price":       "The price is not valid",
	"description": "The description is required",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("price", validPrice); err != nil {
		panic(err)
	}
	return v
}

func validPrice(fl validator.FieldLevel) bool {
	_, ok := ParsePrice(fl.Field().Interface())
	return ok
}

// ValidateProduct runs every field rule against input and collects all failures.
func ValidateProduct(input ProductInput) Result {
	result := Result{Errors: make(map[string]string)}

	err := validate.Struct(input)
	if err == nil {
		return result
	}
	// ProductInput is always a struct, so any error here is ValidationErrors.
	validationErrors, _ := err.(validator.ValidationErrors)
	for _, fe := range validationErrors {
		if msg, known := messages[fe.Field()]; known {
			result.Errors[fe.Field()] = msg
		}
	}
	return result
}

// ParsePrice converts a raw JSON price into a number.
//
// A price must be present and truthy: null, false, the number 0 and the empty
// string are rejected. Anything else must read as a number the way a
// JavaScript Number() conversion would, so numeric strings equal to zero,
// whitespace-only strings (0), true (1), hex/octal/binary literals and
// Infinity are accepted. Objects and arrays are always rejected.
func ParsePrice(raw any) (float64, bool) {
	switch v := raw.(type) {
	case bool:
		if !v {
			return 0, false
		}
		return 1, true
	case float64:
		return v, v != 0 && !math.IsNaN(v)
	case float32:
		return float64(v), v != 0 && !math.IsNaN(float64(v))
	case int:
		return float64(v), v != 0
	case int64:
		return float64(v), v != 0
	case string:
		if v == "" {
			return 0, false
		}
		return numberFromString(v)
	default:
		return 0, false
	}
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

var radixPrefixes = map[string]int{"0x": 16, "0o": 8, "0b": 2}

func numberFromString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 {
		if base, ok := radixPrefixes[strings.ToLower(s[:2])]; ok {
			digits := s[2:]
			if strings.ContainsAny(digits[:1], "+-") {
				return 0, false
			}
			n, ok := new(big.Int).SetString(digits, base)
			if !ok {
				return 0, false
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f, true
		}
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	// Out of range literals saturate to ±Inf or 0.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
