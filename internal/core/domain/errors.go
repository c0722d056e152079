package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a merge failure with a stable kind and code.
//
// Kind names the failure class (e.g. "SegmentOverflow"), Code is a stable
// machine-readable identifier and Details carries the offending context,
// such as the address that did not fit into a segment.
type DomainError struct {
	Kind    string // Failure class, e.g. "InconsistentInput"
	Code    string // Error code, e.g. "SM-MERGE-4220"
	Message string // Human-readable message
	Details string // Optional context
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("%s [%s] %s", e.Kind, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two DomainErrors match when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError.
func NewDomainError(kind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// KindOf extracts the failure kind, or "" for foreign errors.
func KindOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

var (
	// ErrInvalidArgument indicates bad user input (flags, config, addresses).
	ErrInvalidArgument = NewDomainError("InvalidArgument", "SM-ARG-4000", "invalid argument")

	// ErrInconsistentInput indicates an input store failed its own capitalization invariant.
	ErrInconsistentInput = NewDomainError("InconsistentInput", "SM-MERGE-4220", "input store capitalization mismatch")

	// ErrCapitalizationOverflow indicates the lamports sum does not fit in 64 bits.
	ErrCapitalizationOverflow = NewDomainError("CapitalizationOverflow", "SM-CAP-4221", "capitalization overflows uint64")

	// ErrInvalidWarpTarget indicates a warp slot before the current slot.
	ErrInvalidWarpTarget = NewDomainError("InvalidWarpTarget", "SM-WARP-4000", "warp slot is before the current slot")

	// ErrSegmentOverflow indicates a single account is larger than the segment ceiling.
	ErrSegmentOverflow = NewDomainError("SegmentOverflow", "SM-SEG-4130", "account exceeds segment size ceiling")

	// ErrIOFailure indicates a read or write error against the filesystem.
	ErrIOFailure = NewDomainError("IOFailure", "SM-IO-5000", "i/o failure")

	// ErrCorruptArchive indicates an archive that does not match its own manifest.
	// It shares the IOFailure kind.
	ErrCorruptArchive = NewDomainError("IOFailure", "SM-IO-5003", "corrupt snapshot archive")

	// ErrLedgerLoad indicates a missing or corrupt ledger directory.
	ErrLedgerLoad = NewDomainError("LedgerLoadError", "SM-LDGR-5001", "cannot load ledger")

	// ErrGenesisRead indicates the genesis file could not be read.
	ErrGenesisRead = NewDomainError("GenesisReadError", "SM-GEN-5002", "cannot read genesis")
)

// ErrDuplicateAddress is returned when a store already holds an address.
var ErrDuplicateAddress = errors.New("store: duplicate address")
