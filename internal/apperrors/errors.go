package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDateResolution indicates that a date range could not be determined from an
// ingestion batch (empty or malformed batch).
var ErrDateResolution = errors.New("unable to resolve date range for batch")

// ErrNoHistory indicates the backward rate search exhausted the configured
// lookback window without finding any rate records.
var ErrNoHistory = errors.New("no rate history available")

// ErrVersionConflict indicates an optimistic-version clash while persisting a
// rate record; the caller is expected to re-read and retry.
var ErrVersionConflict = errors.New("rate record version conflict")

// ErrReconciliation wraps any failure inside a reconciliation batch after the
// audit trail entry has been emitted.
var ErrReconciliation = errors.New("rate reconciliation failed")
