package compiler

import (
	"strconv"
	"strings"
)

// MaxIdentifierLength is the MySQL limit for table and column names.
const MaxIdentifierLength = 64

const (
	TablePrefix  = "tbl"
	ColumnPrefix = "col"
)

// Sanitizer turns free-text labels into SQL identifiers. Names that are
// empty get a fallback with a sequence number that differs from every name
// the Sanitizer has returned or reserved. One compilation uses one Sanitizer.
type Sanitizer struct {
	seq  int
	used map[string]bool
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{used: make(map[string]bool)}
}

// Reserve marks the identifier raw sanitizes to as taken, so later fallback
// names skip it. Empty names reserve nothing.
func (s *Sanitizer) Reserve(raw, fallbackPrefix string) {
	if name, ok := sanitize(raw, fallbackPrefix); ok {
		s.used[name] = true
	}
}

// Identifier returns raw as a valid identifier: characters outside
// [A-Za-z0-9_] become '_', a non-letter start gets fallbackPrefix + "_",
// and the result is cut to MaxIdentifierLength bytes.
func (s *Sanitizer) Identifier(raw, fallbackPrefix string) string {
	if name, ok := sanitize(raw, fallbackPrefix); ok {
		s.used[name] = true
		return name
	}
	for {
		s.seq++
		name := truncate(fallbackPrefix + "_" + strconv.Itoa(s.seq))
		if !s.used[name] {
			s.used[name] = true
			return name
		}
	}
}

// sanitize reports false for names that are empty after trimming.
func sanitize(raw, fallbackPrefix string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	b := []byte(raw)
	for i, c := range b {
		if !isIdentByte(c) {
			b[i] = '_'
		}
	}
	name := string(b)
	if !isLetter(name[0]) {
		name = fallbackPrefix + "_" + name
	}
	return truncate(name), true
}

func truncate(name string) string {
	if len(name) > MaxIdentifierLength {
		return name[:MaxIdentifierLength]
	}
	return name
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
