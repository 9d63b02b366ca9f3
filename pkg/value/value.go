// Package value parses the scalar tokens found in user-editable theme files:
// hex colors, bounded integers, booleans and font preset names.
//
// Every parser returns either a typed value or an error wrapping ErrInvalid.
// Callers treat a failure as "keep the default for this field".
package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid is wrapped by every parse failure in this package.
var ErrInvalid = errors.New("invalid value")

// RGB is a normalized 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// MarshalText encodes the color as #rrggbb so JSON, YAML and TOML output agree.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts any of the forms ParseColor accepts.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts exactly RRGGBB, #RRGGBB and 0xRRGGBB with
// case-insensitive hex digits. Surrounding whitespace is ignored.
func ParseColor(s string) (RGB, error) {
	raw := strings.TrimSpace(s)
	digits := raw
	switch {
	case strings.HasPrefix(digits, "#"):
		digits = digits[1:]
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		digits = digits[2:]
	}
	if len(digits) != 6 || !isHex(digits) {
		return RGB{}, fmt.Errorf("%w: color %q (want RRGGBB, #RRGGBB or 0xRRGGBB)", ErrInvalid, raw)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: color %q: %v", ErrInvalid, raw, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ParseByte parses a base-10 integer in [0,255]. Signs, hex and fractions fail.
func ParseByte(s string) (uint8, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty integer", ErrInvalid)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("%w: integer %q is not base-10 non-negative", ErrInvalid, raw)
		}
	}
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q outside [0,255]", ErrInvalid, raw)
	}
	return uint8(v), nil
}

// ParseBool accepts case-insensitive "true" or "false" only.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: boolean %q (want true or false)", ErrInvalid, s)
}

// Font selects one of the firmware font presets.
type Font string

const (
	FontDefault  Font = "default"
	FontCompact  Font = "compact"
	FontLarge    Font = "large"
	FontTerminal Font = "terminal"
)

// Fonts lists the allowed presets in declaration order.
var Fonts = []Font{FontDefault, FontCompact, FontLarge, FontTerminal}

// ParseFont requires an exact, case-sensitive match against Fonts.
func ParseFont(s string) (Font, error) {
	raw := strings.TrimSpace(s)
	for _, f := range Fonts {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: font %q (want one of default, compact, large, terminal)", ErrInvalid, raw)
}
