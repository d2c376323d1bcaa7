package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// CoerceFloat turns raw cell text into a numeric value. Blank cells, the
// literal "null" and unparseable text all coerce to nil; callers decide
// whether nil becomes zero or is omitted.
func CoerceFloat(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CoerceBool turns raw cell text into a boolean. Only "true", "yes", "1"
// and "validated" (case-insensitive) are true; everything else, including
// blanks and "null", is false.
func CoerceBool(raw string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	switch trimmed {
	case "true", "yes", "1", "validated":
		return true
	}
	return false
}

// CoerceString returns a trimmed text value, or nil when the cell is blank
// or the literal "null".
func CoerceString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// DeterministicUUID derives a stable UUID-shaped key from an arbitrary
// string using a 32-bit rolling hash (hash*31 + char, wrapping). The result
// carries literal version/variant nibbles ('4' and '8') but is not a real
// UUIDv4: different inputs can collide, which is tolerated because this is
// only the fallback path when the source file carries no identifier.
func DeterministicUUID(s string) string {
	var hash int32
	for _, r := range s {
		hash = hash*31 + int32(r)
	}

	var abs uint32
	if hash < 0 {
		abs = uint32(-int64(hash))
	} else {
		abs = uint32(hash)
	}
	hex := fmt.Sprintf("%08x", abs)

	return fmt.Sprintf("%s-%s-4%s-8%s-%s",
		hex,
		hex[0:4],
		hex[1:4],
		hex[2:5],
		(hex + hex)[0:12],
	)
}
