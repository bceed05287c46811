package validation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validation limits shared by DTO tags and services
const (
	PasswordMinLength = 6
	NameMinLength     = 2
	NameMaxLength     = 100
	MessageMaxLength  = 2000
)

// DateLayout is the calendar-date format activities are exchanged in.
const DateLayout = "2006-01-02"

// ActivityCategories lists the accepted activity categories.
var ActivityCategories = []string{"Sports", "Study", "Event", "Other"}

// Custom validator tags
const (
	TagActivityCategory = "activity_category"
	TagActivityDate     = "activity_date"
	TagNotBlank         = "notblank"
)

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagActivityCategory: func(fl validator.FieldLevel) bool {
			return IsActivityCategory(fl.Field().String())
		},
		TagActivityDate: func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		},
		TagNotBlank: func(fl validator.FieldLevel) bool {
			return IsNotBlank(fl.Field().String())
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// IsActivityCategory reports whether c is one of ActivityCategories.
func IsActivityCategory(c string) bool {
	for _, known := range ActivityCategories {
		if c == known {
			return true
		}
	}
	return false
}

// IsNotBlank reports whether s has any non-whitespace content.
func IsNotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// EmailHasDomain reports whether email belongs to domain, comparing case-insensitively.
func EmailHasDomain(email, domain string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+strings.ToLower(domain))
}

// ParseInterests accepts either a list or a comma-separated string and
// returns the trimmed, non-empty entries.
func ParseInterests(raw interface{}) ([]string, bool) {
	var parts []string
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []string:
		parts = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		parts = strings.Split(v, ",")
	default:
		return nil, false
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
