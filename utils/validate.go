package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is one rejected request field.
type FieldError struct {
	Type     string      `json:"type"`
	Value    interface{} `json:"value"`
	Msg      string      `json:"msg"`
	Path     string      `json:"path"`
	Location string      `json:"location"`
}

// Checker accumulates field errors in the order the checks run.
type Checker struct {
	errs []FieldError
}

// Check records msg against field unless ok holds.
func (c *Checker) Check(ok bool, field string, value interface{}, msg string) {
	if ok {
		return
	}
	c.errs = append(c.errs, FieldError{Type: "field", Value: value, Msg: msg, Path: field, Location: "body"})
}

// Valid reports whether no check failed.
func (c *Checker) Valid() bool { return len(c.errs) == 0 }

// Errors returns the collected errors.
func (c *Checker) Errors() []FieldError { return c.errs }

// MinLen counts runes after trimming surrounding whitespace.
func MinLen(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) >= n
}

// IsEmail validates an address the way the request validators expect.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseISODate accepts a calendar date or an ISO-8601 timestamp.
func ParseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IntFrom reads an integer out of a decoded JSON value, which may arrive as a number or a string.
func IntFrom(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

// FloatFrom reads a number out of a decoded JSON value.
func FloatFrom(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
