package rules

import (
	"fmt"
	"regexp"
)

// Pattern is a file-test regular expression that renders as its source text.
type Pattern struct {
	re *regexp.Regexp
}

// MustPattern compiles expr and panics if it is invalid. It is meant for the
// fixed patterns declared in this package.
func MustPattern(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// ParsePattern compiles expr.
func ParsePattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid file pattern %q: %w", expr, err)
	}
	return Pattern{re: re}, nil
}

// Match reports whether name matches. The zero Pattern matches nothing.
func (p Pattern) Match(name string) bool {
	return p.re != nil && p.re.MatchString(name)
}

func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// IsZero reports whether p holds no expression.
func (p Pattern) IsZero() bool { return p.re == nil }

// MarshalText renders the pattern source.
func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText compiles the pattern source.
func (p *Pattern) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = Pattern{}
		return nil
	}
	parsed, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
