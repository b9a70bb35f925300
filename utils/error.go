package utils

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrExecSequential executes functions one after another and accumulates every
// error instead of stopping at the first one.
func ErrExecSequential(functions ...func() error) error {
	var multErr error

	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}

	return multErr
}

// ErrExecFormat formats the error returned from a function according to the provided format string.
func ErrExecFormat(format string, function func() error) func() error {
	return func() error {
		if err := function(); err != nil {
			return fmt.Errorf(format, err)
		}
		return nil
	}
}
