package domain

import (
	"errors"
	"fmt"
)

// Authentication / session errors.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("access forbidden")
)

// Configuration errors. Returned by an operation whose collaborator is
// missing a required environment value; never crashes the process.
var ErrNotConfigured = errors.New("service not configured")

// Entity lookup errors.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrTemplateNotFound = errors.New("email template not found")
	ErrCompanyNotFound  = errors.New("company info not found")
	ErrLogoNotFound     = errors.New("no logo uploaded")
)

// ErrDuplicateInvoiceNumber surfaces the remote unique constraint on
// (owner, number). Uniqueness is never enforced client-side.
var ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")

// Caller-side precondition failures.
var ErrLastMessageNotUser = errors.New("last message must be from the user")

// ErrRateUnavailable is returned when the exchange-rate source has no usable
// rate for the requested date and currency.
var ErrRateUnavailable = errors.New("no exchange rate available")

// RemoteError wraps a non-2xx or transport failure from an external
// collaborator, passing the upstream message through.
type RemoteError struct {
	Service string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Service, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// PartialWriteError reports the known inconsistency window on invoice
// updates: the parent row was written but the item replacement failed.
// The parent row is not rolled back.
type PartialWriteError struct {
	InvoiceID string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("invoice %s updated but item replacement failed: %v", e.InvoiceID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
