package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketNotConfirmed is returned when canceling a ticket that is not
	// in the confirmed state. Waiting tickets cannot be canceled.
	ErrTicketNotConfirmed = errors.New("ticket is not confirmed")

	// ErrDuplicatePNR signals a PNR collision on insert; callers may
	// regenerate the PNR and retry.
	ErrDuplicatePNR = errors.New("pnr already exists")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// StorageError wraps a persistence failure so that callers can distinguish
// storage outages from domain errors without seeing driver details.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
