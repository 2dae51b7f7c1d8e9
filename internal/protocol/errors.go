// =============================
// File: internal/protocol/errors.go
// =============================
package protocol

import "errors"

var (
	// ErrValidation reports malformed or inconsistent caller input.
	// Nothing was fetched or built when this is returned.
	ErrValidation = errors.New("protocol: invalid input")

	// ErrUnsupportedRoute reports a route shape the compiler cannot
	// express, such as more than two hops.
	ErrUnsupportedRoute = errors.New("protocol: unsupported route shape")

	// ErrNoFeeAccount reports a destination mint with no registered fee
	// token account.
	ErrNoFeeAccount = errors.New("protocol: no fee account for mint")
)
