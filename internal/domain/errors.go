package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound = errors.New("authoring session not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrMediaNotFound   = errors.New("media item not found")
	ErrMissingBearer   = errors.New("missing bearer credential")
)

// FieldError flags one field. Field is a dotted path such as "sellingPrice" or "attributes.12".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is detected locally and never reaches the network.
type ValidationError struct {
	Section string       `json:"section,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
	Message string       `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError whose Message aggregates every field message.
func NewValidationError(section string, fields []FieldError) *ValidationError {
	e := &ValidationError{Section: section, Fields: fields}
	e.Message = e.Error()
	return e
}

func FieldInvalid(field, format string, args ...interface{}) *ValidationError {
	return NewValidationError("", []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}})
}

// SchemaFetchError means the schema could not be loaded. It is distinct from an empty schema.
type SchemaFetchError struct {
	CategoryID string
	Err        error
}

func (e *SchemaFetchError) Error() string {
	return fmt.Sprintf("failed to load attributes for category %s: %v", e.CategoryID, e.Err)
}

func (e *SchemaFetchError) Unwrap() error { return e.Err }

// NetworkError covers every transport level failure: timeouts, refused connections and
// unexpected statuses look the same to callers.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UploadRejected is raised before any file of the batch is sent.
type UploadRejected struct {
	Requested int
	Remaining int
}

func (e *UploadRejected) Error() string {
	return fmt.Sprintf("cannot upload %d files: only %d media slots remaining", e.Requested, e.Remaining)
}

const genericPersistenceMessage = "The changes could not be saved. Please try again."

// PersistenceError means the server rejected a save.
type PersistenceError struct {
	Op      string
	Field   string
	Message string
	Status  int
}

func (e *PersistenceError) Error() string {
	if e.Message == "" {
		return genericPersistenceMessage
	}
	return e.Message
}

// SectionLockedError is returned for sub-section operations before the base product exists.
type SectionLockedError struct {
	Section Section
	State   DraftState
}

func (e *SectionLockedError) Error() string {
	return fmt.Sprintf("%s section is locked until the base product is saved", e.Section)
}

// IsRetryable reports whether the user should be offered a "try again" affordance.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	var schemaErr *SchemaFetchError
	return errors.As(err, &netErr) || errors.As(err, &schemaErr)
}

// UserMessage converts any error into the text shown next to the failing section.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		valErr     *ValidationError
		schemaErr  *SchemaFetchError
		netErr     *NetworkError
		rejected   *UploadRejected
		persistErr *PersistenceError
		lockedErr  *SectionLockedError
	)
	switch {
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &rejected):
		return rejected.Error()
	case errors.As(err, &persistErr):
		return persistErr.Error()
	case errors.As(err, &lockedErr):
		return lockedErr.Error()
	case errors.As(err, &schemaErr):
		return "Attributes for this category could not be loaded. Try again."
	case errors.As(err, &netErr):
		return "The catalog service could not be reached. Try again."
	case errors.Is(err, ErrSessionNotFound):
		return "This draft is no longer open."
	}
	return "Something went wrong. Try again."
}
