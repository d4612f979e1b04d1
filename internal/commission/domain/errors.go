package domain

import (
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// Commission-specific error definitions.
var (
	// ErrInvalidRate indicates a commission rate outside [0, 1].
	ErrInvalidRate = errors.Wrap(errors.ErrInvalidInput, "commission rate must be between 0 and 1")

	// ErrOrderNotSettled indicates commission was requested for an order whose payment is not completed.
	ErrOrderNotSettled = errors.Wrap(errors.ErrPreconditionFailed, "order payment is not completed")
)
