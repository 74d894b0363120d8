// Package storage defines the Storage interface, the contract any external
// record store must satisfy to receive sign-ups.
//
// The submission service depends only on this interface, so tests can pass
// a fake and production wires the Airtable client from storage/airtable.
package storage

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/camp-signup/internal/types"
)

// Storage is the record store contract.
type Storage interface {
	// CreateRegistration writes one validated registration and returns the
	// identifier the store assigned to it. Implementations perform exactly
	// one write attempt and never retry.
	CreateRegistration(ctx context.Context, reg types.Registration) (string, error)
}

// StatusError reports that the store answered but rejected the write.
type StatusError struct {
	StatusCode int
	// Status is the reason phrase, e.g. "Unprocessable Entity".
	Status string
	// Detail is the store's own error message, if it sent one.
	Detail string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("storage: status %d", e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
