package docModel

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the store when no live document has the id.
var ErrNotFound = errors.New("document not found")

// ConflictError signals a duplicate canonical URL among live documents.
type ConflictError struct {
	ExistingId   string
	CanonicalURL string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document with canonical URL %q already exists (id %s)", e.CanonicalURL, e.ExistingId)
}

// ValidationError is malformed input on the synchronous path. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OracleError wraps a parser/embedder/summarizer failure or timeout. It is
// handled inside the workers and never reaches a synchronous caller.
type OracleError struct {
	Oracle string
	Err    error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s oracle: %v", e.Oracle, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// StorageError is a fatal persistence failure during a synchronous write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
