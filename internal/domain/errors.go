package domain

import "errors"

// Billing validation failures. All are deterministic client-input or
// state-conflict errors; none are transient.
var (
	// ErrMissingClient indicates an invoice request without a client id.
	ErrMissingClient = errors.New("client is required")
	// ErrEmptySelection indicates an invoice request with no sessions selected.
	ErrEmptySelection = errors.New("at least one session is required")
	// ErrUnknownSession indicates a session id that does not resolve to a
	// session owned by the caller.
	ErrUnknownSession = errors.New("unknown session")
	// ErrAlreadyInvoiced indicates a session that is already referenced by an
	// existing invoice.
	ErrAlreadyInvoiced = errors.New("session already invoiced")
	// ErrClientMismatch indicates a selected session that belongs to a
	// different client than the one being invoiced.
	ErrClientMismatch = errors.New("session belongs to a different client")
	// ErrOpenSession indicates a selected session that is still running.
	ErrOpenSession = errors.New("session is still running")
)

var (
	// ErrNotFound indicates the referenced entity does not exist or is not
	// owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus indicates a status outside {Pending, Paid}.
	ErrInvalidStatus = errors.New("invalid invoice status")
	// ErrClientInUse indicates a client deletion blocked by sessions or
	// invoices that still reference it.
	ErrClientInUse = errors.New("client is referenced by sessions or invoices")
	// ErrTimerRunning indicates a timer start while another session is open.
	ErrTimerRunning = errors.New("a session is already running")
)
