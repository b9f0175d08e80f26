package configuration

import (
	"errors"
	"fmt"
)

// ErrNoTargetSelected is returned when neither a target values file nor a file pattern is set
var ErrNoTargetSelected = fmt.Errorf("either %s or %s must be set", EnvTargetValuesFile, EnvFilePattern)

// MissingSettingError is returned for the first required setting that is not set
type MissingSettingError struct {
	Key string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Key)
}

// InvalidSettingError is returned when a setting has a value that cannot be used
type InvalidSettingError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid value '%s' for %s: %s", e.Value, e.Key, e.Reason)
}

// IsConfigurationError reports whether err belongs to the configuration error class
func IsConfigurationError(err error) bool {
	var missing *MissingSettingError
	var invalid *InvalidSettingError
	return errors.Is(err, ErrNoTargetSelected) || errors.As(err, &missing) || errors.As(err, &invalid)
}
