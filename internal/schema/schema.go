// Package schema turns untyped JSON payloads into typed, validated inputs.
//
// Inputs are plain structs whose fields are pointers (nil = absent), tagged
// with their JSON name, a `validate` rule list in go-playground/validator
// syntax and an optional `each` rule list applied to every list element.
// Decode is the only routine that reads those tags.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/aTrapDeer/portfolio-cms/internal/errs"
	"github.com/go-playground/validator/v10"
)

// Mode selects which presence rules apply.
type Mode int

const (
	// Create enforces `required`.
	Create Mode = iota
	// Patch makes every field optional; present fields keep their format rules.
	Patch
)

var validate = newValidator()

// Decode reads one JSON object from body into dst, a pointer to an input
// struct. Unknown keys are discarded. Every failing field is reported in a
// single *errs.ValidationError, in struct field order.
func Decode(body io.Reader, dst any, mode Mode) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("schema: dst must be a pointer to a struct, got %T", dst)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil || raw == nil {
		return errs.BadRequest("request body must be a JSON object")
	}

	verr := &errs.ValidationError{}
	failed := decodeFields(raw, v.Elem(), verr)
	check(v.Elem(), "", mode, failed, verr)
	return verr.Err()
}

// Validate runs the rules against an already populated input.
func Validate(in any, mode Mode) error {
	v := reflect.Indirect(reflect.ValueOf(in))
	verr := &errs.ValidationError{}
	check(v, "", mode, nil, verr)
	return verr.Err()
}

type field struct {
	index    int
	name     string
	required bool
	rules    string
	each     string
}

func fieldsOf(t reflect.Type) []field {
	out := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		f := field{index: i, name: name, each: sf.Tag.Get("each")}
		var rules []string
		for _, r := range strings.Split(sf.Tag.Get("validate"), ",") {
			switch r {
			case "":
			case "required":
				f.required = true
			default:
				rules = append(rules, r)
			}
		}
		f.rules = strings.Join(rules, ",")
		out = append(out, f)
	}
	return out
}

// decodeFields unmarshals each known key separately so one type mismatch does
// not hide the others. It returns the paths that failed to decode.
func decodeFields(raw map[string]json.RawMessage, v reflect.Value, verr *errs.ValidationError) map[string]bool {
	failed := map[string]bool{}
	for _, f := range fieldsOf(v.Type()) {
		msg, ok := raw[f.name]
		if !ok || string(msg) == "null" {
			continue
		}
		fv := v.Field(f.index)
		if err := json.Unmarshal(msg, fv.Addr().Interface()); err != nil {
			fv.Set(reflect.Zero(fv.Type()))
			path := f.name
			var ute *json.UnmarshalTypeError
			if errors.As(err, &ute) && ute.Field != "" && isStructList(fv.Type()) {
				path += "." + ute.Field
			}
			verr.Add(path, typeMessage(fv.Type()))
			failed[f.name] = true
		}
	}
	return failed
}

func check(v reflect.Value, prefix string, mode Mode, failed map[string]bool, verr *errs.ValidationError) {
	for _, f := range fieldsOf(v.Type()) {
		path := prefix + f.name
		if failed[f.name] {
			continue
		}
		fv := v.Field(f.index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				if f.required && mode == Create {
					verr.Add(path, "is required")
				}
				continue
			}
			fv = fv.Elem()
		}

		if f.rules != "" {
			if err := validate.Var(fv.Interface(), f.rules); err != nil {
				verr.Add(path, message(err, fv))
				continue
			}
		}

		if fv.Kind() != reflect.Slice {
			continue
		}
		for i := 0; i < fv.Len(); i++ {
			elem := reflect.Indirect(fv.Index(i))
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			switch {
			case elem.Kind() == reflect.Struct:
				// List elements are whole records, so required applies even in Patch.
				check(elem, elemPath+".", Create, nil, verr)
			case f.each != "":
				if err := validate.Var(elem.Interface(), f.each); err != nil {
					verr.Add(elemPath, message(err, elem))
				}
			}
		}
	}
}

func isStructList(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Slice {
		return false
	}
	e := t.Elem()
	for e.Kind() == reflect.Pointer {
		e = e.Elem()
	}
	return e.Kind() == reflect.Struct
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.Slice:
		if isStructList(t) {
			return "must be an array of objects"
		}
		return "must be an array of strings"
	case reflect.Struct:
		return "must be an object"
	}
	return "has an invalid type"
}

func message(err error, v reflect.Value) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "is invalid"
	}
	fe := verrs[0]
	param := fe.Param()
	switch fe.Tag() {
	case "min":
		switch v.Kind() {
		case reflect.String:
			if param == "1" {
				return "must not be empty"
			}
			return "must be at least " + param + " characters"
		case reflect.Slice:
			if param == "1" {
				return "must contain at least 1 item"
			}
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param
	case "max":
		switch v.Kind() {
		case reflect.String:
			return "must be at most " + param + " characters"
		case reflect.Slice:
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "url", "http_url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "iso8601":
		return "must be an ISO-8601 date or datetime"
	case "cvtype":
		return "must be one of: " + strings.Join(cvTypes(), ", ")
	case "cvsize":
		return fmt.Sprintf("must not exceed %d bytes", cvMaxSize())
	}
	return "is invalid (" + fe.Tag() + ")"
}
