package skeleton

import "github.com/pkg/errors"

// ErrConfiguration is the cause of every error returned by Build.
var ErrConfiguration = errors.New("invalid skeleton configuration")

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// IsConfigurationError reports whether err was produced by skeleton validation.
func IsConfigurationError(err error) bool {
	return err != nil && errors.Cause(err) == ErrConfiguration
}
