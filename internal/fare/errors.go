package fare

import "errors"

var (
	// ErrInvalidInput marks a request that breaks the engine's input contract.
	ErrInvalidInput = errors.New("invalid fare input")

	// ErrAlreadyReconciled is returned when a breakdown that already carries
	// an actual total is reconciled a second time.
	ErrAlreadyReconciled = errors.New("fare breakdown already reconciled")
)
