// internal/launchpad/errors.go
package launchpad

import (
	"errors"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenExists      = errors.New("token already exists")
	ErrGraduated        = errors.New("token has graduated from the curve")
	ErrSlippageExceeded = errors.New("slippage exceeded")
	ErrInvalidRequest   = errors.New("invalid request")

	// ErrRaisedUnderflow means a sale would pay out more than the token has raised.
	// The curve never prices a buy below its integral, so this points at corrupted state.
	ErrRaisedUnderflow = errors.New("sell proceeds exceed raised amount")

	// ErrVersionConflict is returned when the retry budget runs out while other writers
	// keep moving the token or reward snapshot.
	ErrVersionConflict = storage.ErrVersionConflict
)

var clientErrors = []error{
	ErrTokenNotFound,
	ErrTokenExists,
	ErrGraduated,
	ErrSlippageExceeded,
	ErrInvalidRequest,
	bondingcurve.ErrInvalidInput,
	bondingcurve.ErrInsufficientSupply,
	rewards.ErrInvalidVolume,
	rewards.ErrOverpayment,
}

// IsClientError reports whether err is caused by the request rather than by the service.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
