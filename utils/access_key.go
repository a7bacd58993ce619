package utils

import "github.com/google/uuid"

// NewAccessKey returns the opaque per-order capability token. It carries no
// identity; possession alone admits a client to the order's tracking room.
func NewAccessKey() string {
	return uuid.NewString()
}
