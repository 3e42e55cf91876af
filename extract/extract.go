// Package extract parses the opaque details payload attached to audit-log
// records. Payload shape is not guaranteed consistent across record types, so
// a parse failure is a normal outcome: callers receive an empty field set and
// treat the raw string as pre-formatted text.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fields holds the named values recovered from a details payload. Keys are
// normalized (lower-cased, separators stripped) so ProductName, product_name,
// and productName all resolve to the same field.
type Fields map[string]any

// Parse attempts to decode the details string as a structured record. It never
// fails: malformed or absent payloads yield an empty field set.
func Parse(details string) Fields {
	trimmed := strings.TrimSpace(details)
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") {
		return Fields{}
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return Fields{}
	}
	fields := make(Fields, len(raw))
	for key, value := range raw {
		fields[normalizeKey(key)] = value
	}
	return fields
}

// IsEmpty reports whether no fields were recovered.
func (f Fields) IsEmpty() bool { return len(f) == 0 }

// ProductName returns the product display name, if present.
func (f Fields) ProductName() (string, bool) { return f.text("productname") }

// CategoryName returns the category display name, if present.
func (f Fields) CategoryName() (string, bool) { return f.text("categoryname") }

// MovementType returns the stock-movement direction, if present.
func (f Fields) MovementType() (string, bool) { return f.text("movementtype") }

// ReturnType returns the return category, if present.
func (f Fields) ReturnType() (string, bool) { return f.text("returntype") }

// Message returns a pre-composed free-text description, if present.
func (f Fields) Message() (string, bool) { return f.text("message") }

// UserName returns an actor name recovered from the payload, if present.
func (f Fields) UserName() (string, bool) {
	if name, ok := f.text("username"); ok {
		return name, true
	}
	return f.text("fullname")
}

// ProductID returns the product identifier as a display string, if present.
func (f Fields) ProductID() (string, bool) { return f.display("productid") }

// Quantity returns the quantity as a display string. Quantities are opaque
// values: non-numeric payloads pass through untouched and absent ones report
// false so callers can omit the number from a sentence.
func (f Fields) Quantity() (string, bool) { return f.display("quantity") }

func (f Fields) text(key string) (string, bool) {
	value, ok := f[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// display renders scalar values for sentence interpolation. JSON numbers
// arrive as float64 and are rendered without a trailing fraction when whole.
func (f Fields) display(key string) (string, bool) {
	value, ok := f[key]
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}
