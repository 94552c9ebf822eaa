// Package validation checks profile drafts before they are submitted.
package validation

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/janisto/profile-sync/internal/profile"
)

// Field names reported in Violations.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldAge   = "age"
)

const (
	MsgNameRequired  = "Name is required"
	MsgNameTooShort  = "Name must be at least 3 characters"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Email is not valid"
	MsgAgeRange      = "Age must be greater than 10 and less than 100"
)

const (
	minNameLength = 3
	minAge        = 10
	maxAge        = 100
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Violations maps a field name to its error message. An empty map means valid.
type Violations map[string]string

// Empty reports whether no field failed.
func (v Violations) Empty() bool { return len(v) == 0 }

// Fields returns the failing field names in sorted order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Validate runs every field rule against the draft. Rules never short-circuit
// each other, so the result lists all failing fields.
func Validate(p profile.Profile) Violations {
	v := Violations{}
	for _, field := range []string{FieldName, FieldEmail, FieldAge} {
		if msg := ValidateField(p, field); msg != "" {
			v[field] = msg
		}
	}
	return v
}

// ValidateField returns the message for a single field, or "" when it passes.
// Unknown fields always pass.
func ValidateField(p profile.Profile, field string) string {
	switch field {
	case FieldName:
		return checkName(p.Name)
	case FieldEmail:
		return checkEmail(p.Email)
	case FieldAge:
		return checkAge(p.Age)
	default:
		return ""
	}
}

func checkName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return MsgNameRequired
	}
	if utf8.RuneCountInString(trimmed) < minNameLength {
		return MsgNameTooShort
	}
	return ""
}

func checkEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(trimmed) {
		return MsgEmailInvalid
	}
	return ""
}

// checkAge treats the age as optional; blank input passes.
func checkAge(age string) string {
	trimmed := strings.TrimSpace(age)
	if trimmed == "" {
		return ""
	}
	n, ok := parseNumber(trimmed)
	if !ok || n <= minAge || n >= maxAge {
		return MsgAgeRange
	}
	return ""
}

// parseNumber reads decimal and exponent forms plus unsigned 0x, 0o and 0b
// integer literals, the forms browsers accept for numeric form input.
func parseNumber(s string) (float64, bool) {
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			return float64(n), err == nil
		}
	}
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
