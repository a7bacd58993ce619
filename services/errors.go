package services

import "errors"

// Failure taxonomy for the order pipeline. Callers match with errors.Is;
// wrapped variants carry detail (offending product, current status).
var (
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrTableUnavailable  = errors.New("table is not available")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductDisabled   = errors.New("product is disabled")
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidToken      = errors.New("invalid token")
)
