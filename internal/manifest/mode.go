package manifest

import (
	"fmt"
	"strings"
)

// Mode selects the environment a configuration is synthesized for.
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

// ParseMode accepts "development" or "production" (case-insensitive, with the
// common "dev"/"prod" abbreviations).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development, nil
	case "production", "prod":
		return Production, nil
	}
	return "", &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q, expected 'development' or 'production'", s)}
}

// IsDev reports whether m is the development mode.
func (m Mode) IsDev() bool { return m == Development }

// Framework is the UI framework the project is written against. It is a closed
// enum; anything else is a configuration error.
type Framework string

const (
	FrameworkNone  Framework = "none"
	FrameworkReact Framework = "react"
)

// ParseFramework validates a framework name. The empty string means none.
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FrameworkNone, nil
	case "react":
		return FrameworkReact, nil
	}
	return "", &ConfigError{Field: "ui_framework", Reason: fmt.Sprintf("unsupported framework %q, expected 'none' or 'react'", s)}
}

// Valid reports whether f is one of the known frameworks.
func (f Framework) Valid() bool {
	return f == FrameworkNone || f == FrameworkReact
}
