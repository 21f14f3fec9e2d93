package manifest

import "fmt"

// ConfigError reports a malformed or missing manifest field, or an invalid
// enum value. It is fatal: synthesis stops before any output is produced.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Field != "" {
		msg = fmt.Sprintf("config error in '%s'", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }
