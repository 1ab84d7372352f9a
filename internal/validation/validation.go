// Package validation holds the input contracts of every mutating endpoint.
// Requests are plain structs with `validate` tags; Struct checks them all at
// once and reports failures per JSON field.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/trainlog/internal/domain"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldErrors maps a JSON field path (e.g. "email", "logs[1].rpe") to its messages.
type FieldErrors map[string][]string

// ValidationError is returned for any input that fails its contract.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := e.keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns the first message in field order, for endpoints that report a single error string.
func (e *ValidationError) First() string {
	keys := e.keys()
	if len(keys) == 0 || len(e.Fields[keys[0]]) == 0 {
		return "Invalid input"
	}
	return e.Fields[keys[0]][0]
}

func (e *ValidationError) keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: {message}}}
}

// defaulter is implemented by requests that fill optional fields after validation.
type defaulter interface {
	ApplyDefaults()
}

// normalizer is implemented by requests whose text fields are trimmed before validation.
type normalizer interface {
	Normalize()
}

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return domain.Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("weightunit", func(fl validator.FieldLevel) bool {
			u := domain.WeightUnit(fl.Field().String())
			return u == domain.UnitLb || u == domain.UnitKg
		})
		_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if !datePattern.MatchString(s) {
				return false
			}
			_, err := time.Parse(domain.DateLayout, s)
			return err == nil
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		v.RegisterCustomTypeFunc(nullableValue,
			Nullable[int]{}, Nullable[float64]{}, Nullable[string]{})
		instance = v
	})
	return instance
}

// Struct normalizes s, validates it against its tags and, on success, applies defaults.
func Struct(s any) error {
	if n, ok := s.(normalizer); ok {
		n.Normalize()
	}
	err := engine().Struct(s)
	if err == nil {
		if d, ok := s.(defaulter); ok {
			d.ApplyDefaults()
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		fields[key] = append(fields[key], message(fe))
	}
	return &ValidationError{Fields: fields}
}

// FromDecodeError converts a JSON decoding failure of body into a
// ValidationError when it can be attributed to a field. Fields inside a
// top-level array carry the element index ("logs[1].reps"). Syntax errors are
// reported against "body".
func FromDecodeError(err error, body []byte) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := indexedField(body, typeErr.Field, typeErr.Offset)
		return NewFieldError(field, fmt.Sprintf("Expected %s, received %s", expectedKind(typeErr.Type), typeErr.Value))
	}
	return NewFieldError("body", "Invalid JSON body")
}

// indexedField rewrites "logs.reps" to "logs[i].reps" when the top-level key
// holds an array, i being the element that contains offset.
func indexedField(body []byte, field string, offset int64) string {
	key, rest, nested := strings.Cut(field, ".")
	if !nested || len(body) == 0 {
		return field
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return field
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return field
		}
		if name, _ := tok.(string); name != key {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return field
			}
			continue
		}
		if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
			return field
		}
		for i := 0; dec.More(); i++ {
			var elem json.RawMessage
			if err := dec.Decode(&elem); err != nil {
				return field
			}
			if dec.InputOffset() >= offset {
				return fmt.Sprintf("%s[%d].%s", key, i, rest)
			}
		}
		return field
	}
	return field
}

// fieldPath drops the top-level struct name: "SignupRequest.email" -> "email".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func expectedKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	default:
		return "object"
	}
}

// fieldMessages overrides the generic message for a field/tag pair.
var fieldMessages = map[string]string{
	"name.min":                "Name is required",
	"title.min":               "Title is required",
	"password.min":            "Password must be at least 8 characters",
	"confirmPassword.eqfield": "Passwords don't match",
	"token.required":          "Token is required",
	"date.ymd":                "Date must be YYYY-MM-DD",
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		if numeric {
			return "Number must be greater than or equal to " + fe.Param()
		}
		return "String must contain at least " + fe.Param() + " character(s)"
	case "max":
		if numeric {
			return "Number must be less than or equal to " + fe.Param()
		}
		return "String must contain at most " + fe.Param() + " character(s)"
	case "eqfield":
		return "Must match " + fe.Param()
	case "category":
		return "Invalid category, expected one of: " + categoryList()
	case "weightunit":
		return "Invalid unit, expected 'lb' or 'kg'"
	case "ymd":
		return "Date must be YYYY-MM-DD"
	case "objectid":
		return "Invalid id"
	default:
		return "Invalid value"
	}
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
