package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"er_diagram/internal/apperrors"
)

// Coordinate is a position value as sent by the editor: a JSON number or a
// CSS length string such as "120px".
type Coordinate string

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Coordinate(n.String())
	return nil
}

// Int strips the px unit and truncates toward zero. An empty value is 0.
func (c Coordinate) Int() (int, error) {
	return ParseCoordinate(string(c))
}

func ParseCoordinate(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperrors.InvalidInput("invalid coordinate %q", s)
	}
	return int(f), nil
}
