package schema

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind identifies the declared type of a request field.
type Kind string

const (
	KindString     Kind = "string"
	KindBool       Kind = "bool"
	KindInt        Kind = "int"
	KindFloat      Kind = "float"
	KindStringList Kind = "list"
	KindChoice     Kind = "choice"
	KindFile       Kind = "file"
)

// Validation error messages. The wording is part of the API contract and
// must not change without versioning the endpoints.
const (
	MsgRequired     = "This field is required."
	MsgBlank        = "This field may not be blank."
	MsgInvalidBool  = "Must be a valid boolean."
	MsgInvalidInt   = "A valid integer is required."
	MsgInvalidFloat = "A valid number is required."
)

// CheckFunc is an optional domain-specific validation applied to a field's
// coerced value. The returned error message is surfaced to the caller
// verbatim.
type CheckFunc func(value any) error

// Field declares one request parameter: its type, requiredness, default
// value and optional domain check.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
	Choices  []string
	Check    CheckFunc
}

// Values holds a validated request: every declared field mapped to its
// typed, normalized value.
type Values map[string]any

// ErrorReport maps field names to ordered lists of human-readable errors.
// It is returned to the caller verbatim as the 400 response body.
type ErrorReport map[string][]string

func (r ErrorReport) add(field, msg string) {
	r[field] = append(r[field], msg)
}

// Schema is an ordered list of field declarations for one endpoint.
// Immutable after construction and safe for concurrent use.
type Schema struct {
	fields []Field
}

// New builds a schema from the given field declarations. It panics on a
// duplicate field name since schemas are fixed at startup.
func New(fields ...Field) *Schema {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return &Schema{fields: fields}
}

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Validate checks raw form input against the schema. It returns either the
// complete normalized value mapping or a report with one entry per failing
// field. Errors accumulate across fields; validation never stops at the
// first failure. Input keys not declared in the schema are ignored.
func (s *Schema) Validate(form url.Values, files map[string][]byte) (Values, ErrorReport) {
	values := make(Values, len(s.fields))
	report := make(ErrorReport)
	for i := range s.fields {
		f := &s.fields[i]
		raw, present := rawValue(f, form, files)
		if !present {
			if f.Required {
				report.add(f.Name, MsgRequired)
				continue
			}
			values[f.Name] = defaultValue(f)
			continue
		}
		value, ok := coerce(f, raw, report)
		if !ok {
			continue
		}
		if f.Check != nil {
			if err := f.Check(value); err != nil {
				report.add(f.Name, err.Error())
				continue
			}
		}
		values[f.Name] = value
	}
	if len(report) > 0 {
		return nil, report
	}
	return values, nil
}

// rawValue extracts a field's raw input. List fields collect all repeated
// form values; file fields read uploaded content.
func rawValue(f *Field, form url.Values, files map[string][]byte) (any, bool) {
	if f.Kind == KindFile {
		content, ok := files[f.Name]
		if !ok {
			return nil, false
		}
		return string(content), true
	}
	vals, ok := form[f.Name]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	if f.Kind == KindStringList {
		return vals, true
	}
	return vals[0], true
}

// defaultValue materializes the declared default. Absent optional fields
// always appear in the output so callers observe exactly what the server
// interpreted.
func defaultValue(f *Field) any {
	if f.Default != nil {
		return f.Default
	}
	switch f.Kind {
	case KindBool:
		return false
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindStringList:
		return []string{}
	default:
		return ""
	}
}

func coerce(f *Field, raw any, report ErrorReport) (any, bool) {
	switch f.Kind {
	case KindString, KindFile:
		str := raw.(string)
		if f.Required && strings.TrimSpace(str) == "" {
			report.add(f.Name, MsgBlank)
			return nil, false
		}
		return str, true
	case KindBool:
		b, err := parseBool(raw.(string))
		if err != nil {
			report.add(f.Name, MsgInvalidBool)
			return nil, false
		}
		return b, true
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw.(string)))
		if err != nil {
			report.add(f.Name, MsgInvalidInt)
			return nil, false
		}
		return n, true
	case KindFloat:
		x, err := strconv.ParseFloat(strings.TrimSpace(raw.(string)), 64)
		if err != nil {
			report.add(f.Name, MsgInvalidFloat)
			return nil, false
		}
		return x, true
	case KindChoice:
		str := raw.(string)
		for _, choice := range f.Choices {
			if str == choice {
				return str, true
			}
		}
		report.add(f.Name, fmt.Sprintf("%q is not a valid choice.", str))
		return nil, false
	case KindStringList:
		vals := raw.([]string)
		out := make([]string, len(vals))
		copy(out, vals)
		return out, true
	default:
		report.add(f.Name, fmt.Sprintf("Unsupported field kind %q.", f.Kind))
		return nil, false
	}
}

// parseBool accepts the canonical boolean encodings and rejects
// everything else.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
