package moonday

import "fmt"

// ConfigurationError reports an invalid generation setting. It is returned
// before any phase event is processed, so no partial result accompanies it.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("moonday: invalid %s %q: %s", e.Field, e.Value, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(field, value, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason, Err: err}
}
