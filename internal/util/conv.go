package util

import (
	"strconv"
	"strings"
)

// ParseID parses a wire identifier. IDs travel as decimal strings and must be positive.
func ParseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// MustParseID returns 0 when s is not a valid identifier.
func MustParseID(s string) uint64 {
	id, _ := ParseID(s)
	return id
}

func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// WireID is an identifier in a request body. Clients send IDs as strings,
// plain JSON numbers are accepted as well.
type WireID uint64

func (id *WireID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*id = 0
		return nil
	}
	v, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = WireID(v)
	return nil
}

func (id WireID) Uint64() uint64 {
	return uint64(id)
}
