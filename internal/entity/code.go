package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Code identifies an entity within a source namespace. The same (type, origin, value)
// always renders the same string, so repeated enrichment recognizes known entities.
type Code struct {
	Type   Type
	Origin string
	Value  string
}

// NewCode builds a code for a numeric source id.
func NewCode(t Type, origin string, id int64) Code {
	return Code{Type: t, Origin: origin, Value: strconv.FormatInt(id, 10)}
}

// String renders "/<Type>#<origin>:<value>".
func (c Code) String() string {
	return "/" + string(c.Type) + "#" + c.Origin + ":" + c.Value
}

// IsZero reports whether c is the zero code.
func (c Code) IsZero() bool {
	return c.Type == "" && c.Origin == "" && c.Value == ""
}

// ParseCode is the inverse of Code.String.
func ParseCode(s string) (Code, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "/")
	if !ok {
		return Code{}, fmt.Errorf("entity code %q: missing leading '/'", s)
	}
	typ, rest, ok := strings.Cut(rest, "#")
	if !ok || typ == "" {
		return Code{}, fmt.Errorf("entity code %q: missing entity type", s)
	}
	origin, value, ok := strings.Cut(rest, ":")
	if !ok || origin == "" || value == "" {
		return Code{}, fmt.Errorf("entity code %q: expected <origin>:<value>", s)
	}
	return Code{Type: Type(typ), Origin: origin, Value: value}, nil
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
