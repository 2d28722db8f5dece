package mediator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nbowman189/vitruvian-developer-sub000/internal/agent/catalog"
	errx "github.com/nbowman189/vitruvian-developer-sub000/internal/core/error"
)

// validateFields coerces and checks every value against the capability's
// declared fields, returning the validated copy and every failing field.
// Validation is shape-only: types and ranges, never factual claims.
func validateFields(cap catalog.Capability, values map[string]any, now func() time.Time) (map[string]any, []errx.FieldError) {
	var fails []errx.FieldError
	out := make(map[string]any, len(values))

	for name, raw := range values {
		field, ok := cap.Field(name)
		if !ok {
			fails = append(fails, errx.FieldError{Field: name, Reason: "not declared by capability"})
			continue
		}
		v, reason := coerce(field, raw, now)
		if reason != "" {
			fails = append(fails, errx.FieldError{Field: name, Reason: reason})
			continue
		}
		out[name] = v
	}

	for _, field := range cap.Fields {
		if !field.Required {
			continue
		}
		if _, ok := out[field.Name]; !ok {
			if hasFailure(fails, field.Name) {
				continue
			}
			fails = append(fails, errx.FieldError{Field: field.Name, Reason: "required"})
		}
	}

	return out, fails
}

func hasFailure(fails []errx.FieldError, name string) bool {
	for _, f := range fails {
		if f.Field == name {
			return true
		}
	}
	return false
}

func coerce(field catalog.Field, raw any, now func() time.Time) (any, string) {
	switch field.Type {
	case catalog.FieldDate:
		return coerceDate(raw, now)
	case catalog.FieldNumber:
		return coerceNumber(field, raw)
	case catalog.FieldEnum:
		return coerceEnum(field, raw)
	case catalog.FieldTextList:
		return coerceTextList(raw)
	default:
		return coerceText(raw)
	}
}

func coerceDate(raw any, now func() time.Time) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, "expected a date string"
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "today":
		return now().Format("2006-01-02"), ""
	case "yesterday":
		return now().AddDate(0, 0, -1).Format("2006-01-02"), ""
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02"), ""
	}
	return nil, "expected YYYY-MM-DD"
}

func coerceNumber(field catalog.Field, raw any) (any, string) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, "expected a number"
		}
		v = parsed
	default:
		return nil, "expected a number"
	}
	if field.Min != nil && v < *field.Min {
		return nil, fmt.Sprintf("must be at least %g", *field.Min)
	}
	if field.Max != nil && v > *field.Max {
		return nil, fmt.Sprintf("must be at most %g", *field.Max)
	}
	return v, ""
}

func coerceEnum(field catalog.Field, raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, "expected a string"
	}
	s = strings.TrimSpace(s)
	for _, allowed := range field.Values {
		if strings.EqualFold(s, allowed) {
			return allowed, ""
		}
	}
	return nil, fmt.Sprintf("must be one of: %s", strings.Join(field.Values, ", "))
}

func coerceText(raw any) (any, string) {
	switch s := raw.(type) {
	case string:
		return strings.TrimSpace(s), ""
	case float64, int, bool:
		return strings.TrimSpace(fmt.Sprint(s)), ""
	default:
		return nil, "expected text"
	}
}

func coerceTextList(raw any) (any, string) {
	switch list := raw.(type) {
	case []string:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, strings.TrimSpace(item))
		}
		return out, ""
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, "expected a list of text values"
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, ""
	case string:
		// a bare string is accepted as a one-element list
		return []string{strings.TrimSpace(list)}, ""
	default:
		return nil, "expected a list of text values"
	}
}
