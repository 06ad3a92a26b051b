// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"errors"
	"fmt"
)

var (
	errNotFound        = errors.New("not found")
	errInvalidArgument = errors.New("invalid argument")
)

func ErrNotFound(what string) error {
	return fmt.Errorf("%s %w", what, errNotFound)
}

func ErrInvalidArgumentWithReason(name string, value interface{}, reason string) error {
	return fmt.Errorf("%w '%s'=%v (%s)", errInvalidArgument, name, value, reason)
}
