// Package schema defines the shape of every payload the backend returns and
// validates raw bodies against it before anything downstream sees them.
//
// Validation runs in three passes: the JSON Schema of the shape (required
// fields, primitive kinds, present-or-absent optionals), decoding into the
// typed wire struct (timestamp coercion happens here), then struct-tag
// constraints on the decoded value.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

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
	return v
}

// Shape is a named, compiled JSON Schema
type Shape struct {
	Name   string
	schema *gojsonschema.Schema
}

// NewShape compiles a JSON Schema document
func NewShape(name, document string) (*Shape, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to compile shape %s: %w", name, err)
	}
	return &Shape{Name: name, schema: s}, nil
}

// MustShape is NewShape for package-level shapes
func MustShape(name, document string) *Shape {
	s, err := NewShape(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Check validates raw JSON against the shape without decoding it
func (s *Shape) Check(raw []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Shape: s.Name, Problems: []string{"malformed JSON: " + err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &ValidationError{Shape: s.Name, Problems: problems}
}

// ValidationError reports a payload that does not match its shape
type ValidationError struct {
	Shape    string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("invalid %s payload", e.Shape)
	}
	return fmt.Sprintf("invalid %s payload: %s", e.Shape, strings.Join(e.Problems, "; "))
}

// Decode validates raw against shape and decodes it into T
func Decode[T any](raw []byte, shape *Shape) (T, error) {
	var out T
	if err := shape.Check(raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ValidationError{Shape: shape.Name, Problems: []string{err.Error()}}
	}
	if problems := constraints(out, ""); len(problems) > 0 {
		return out, &ValidationError{Shape: shape.Name, Problems: problems}
	}
	return out, nil
}

// DecodeList validates a JSON array against shape and decodes its elements
func DecodeList[T any](raw []byte, shape *Shape) ([]T, error) {
	if err := shape.Check(raw); err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ValidationError{Shape: shape.Name, Problems: []string{err.Error()}}
	}

	var problems []string
	for i, item := range out {
		problems = append(problems, constraints(item, fmt.Sprintf("[%d].", i))...)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Shape: shape.Name, Problems: problems}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func constraints(v any, prefix string) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{prefix + err.Error()}
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace starts with the struct type name; drop it.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		problems = append(problems, fmt.Sprintf("%s%s: failed %s", prefix, ns, fe.Tag()))
	}
	return problems
}
