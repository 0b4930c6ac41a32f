package chunker

import (
	"strconv"
	"strings"
)

// Method names the segmentation strategy the remote service applies.
type Method string

const (
	MethodSmart  Method = "smart"
	MethodSimple Method = "simple"
)

func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodSmart, MethodSimple:
		return Method(s), true
	}
	return "", false
}

const (
	DefaultMaxChars = 2900
	MinMaxChars     = 100
	MaxMaxChars     = 50000

	// MaxChunks is the largest response the site will display; anything
	// bigger is rejected outright rather than truncated.
	MaxChunks = 200
)

// Config is what the user has entered on the chunker form. MaxChars is kept
// as typed, so it may not parse until it is coerced.
type Config struct {
	InputText       string
	MaxChars        string
	CleanTranscript bool
	Method          Method
}

func DefaultConfig() Config {
	return Config{
		MaxChars:        strconv.Itoa(DefaultMaxChars),
		CleanTranscript: true,
		Method:          MethodSmart,
	}
}

// CoerceMaxChars turns typed input into a usable chunk size. Only the leading
// integer counts, so "3000.5" and "3000abc" read as 3000; input without one
// resets to the default.
func CoerceMaxChars(raw string) int {
	v, ok := leadingInt(strings.TrimSpace(raw))
	if !ok {
		return DefaultMaxChars
	}
	return ClampMaxChars(v)
}

// leadingInt reads an optional sign and the digits after it. Magnitudes past
// MaxMaxChars saturate just above it, which keeps overflowing input clamped.
func leadingInt(s string) (int, bool) {
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	v, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if v <= MaxMaxChars {
			v = v*10 + int(s[digits]-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// ClampMaxChars resets values below MinMaxChars to the default but clamps
// values above MaxMaxChars to the bound.
func ClampMaxChars(v int) int {
	switch {
	case v < MinMaxChars:
		return DefaultMaxChars
	case v > MaxMaxChars:
		return MaxMaxChars
	}
	return v
}
