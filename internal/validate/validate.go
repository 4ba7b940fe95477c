// Package validate checks request payloads field by field and collects a
// field -> message error map for the 400 envelope.
package validate

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type Validator struct {
	data   map[string]string
	errors map[string]string
}

func New(data map[string]string) *Validator {
	return &Validator{data: data, errors: make(map[string]string)}
}

func (v *Validator) Errors() map[string]string { return v.errors }

func (v *Validator) Valid() bool { return len(v.errors) == 0 }

func (v *Validator) get(field string) (string, bool) {
	val, ok := v.data[field]
	return val, ok
}

func (v *Validator) fail(field, message string) {
	if _, dup := v.errors[field]; !dup {
		v.errors[field] = message
	}
}

func title(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func (v *Validator) Required(fields ...string) *Validator {
	for _, f := range fields {
		if val, ok := v.get(f); !ok || strings.TrimSpace(val) == "" {
			v.fail(f, title(f)+" is required")
		}
	}
	return v
}

func (v *Validator) MinLength(field string, length int) *Validator {
	if val, ok := v.get(field); ok && val != "" && len(val) < length {
		v.fail(field, fmt.Sprintf("%s must be at least %d characters", title(field), length))
	}
	return v
}

func (v *Validator) MaxLength(field string, length int) *Validator {
	if val, ok := v.get(field); ok && len(val) > length {
		v.fail(field, fmt.Sprintf("%s must not exceed %d characters", title(field), length))
	}
	return v
}

func (v *Validator) Email(field string) *Validator {
	if val, ok := v.get(field); ok && val != "" {
		if _, err := mail.ParseAddress(val); err != nil {
			v.fail(field, "Invalid email format")
		}
	}
	return v
}

func (v *Validator) Numeric(field string) *Validator {
	if val, ok := v.get(field); ok && val != "" {
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			v.fail(field, title(field)+" must be a number")
		}
	}
	return v
}

func (v *Validator) Date(field, layout string) *Validator {
	if val, ok := v.get(field); ok && val != "" {
		if _, err := time.Parse(layout, val); err != nil {
			v.fail(field, fmt.Sprintf("%s must be a valid date in format %s", title(field), layout))
		}
	}
	return v
}

func (v *Validator) In(field string, allowed ...string) *Validator {
	val, ok := v.get(field)
	if !ok || val == "" {
		return v
	}
	for _, a := range allowed {
		if val == a {
			return v
		}
	}
	v.fail(field, title(field)+" contains an invalid value")
	return v
}

// Password enforces length plus upper/lower/digit classes.
func (v *Validator) Password(field string) *Validator {
	val, ok := v.get(field)
	if !ok || val == "" {
		return v
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range val {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	switch {
	case len(val) < 8:
		v.fail(field, "Password must be at least 8 characters long")
	case !hasUpper:
		v.fail(field, "Password must include at least one uppercase letter")
	case !hasLower:
		v.fail(field, "Password must include at least one lowercase letter")
	case !hasDigit:
		v.fail(field, "Password must include at least one number")
	}
	return v
}
