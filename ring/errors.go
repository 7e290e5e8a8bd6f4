package ring

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is returned for malformed inputs: a degree that is not a power of two,
	// an operand not below the modulus, a modulus above the bound of a precision path, or
	// mismatched auxiliary values. The call performs no mutation when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDomain is returned for mathematically undefined requests, such as the inverse of a
	// non-invertible element or a root of unity that does not exist for the given modulus.
	ErrDomain = errors.New("domain error")

	// ErrUnsupported is returned when a precision path has no implementation for the requested operation.
	ErrUnsupported = errors.New("unsupported operation")
)

func invalidArgumentf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

func domainf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDomain, format, args...)
}
