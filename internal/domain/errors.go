package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when neither statement text nor an attachment was supplied.
	ErrEmptyInput = errors.New("please enter text or upload a bank statement file")

	// ErrCollaboratorFailure wraps every failure of the external analysis call.
	ErrCollaboratorFailure = errors.New("analysis failed")

	// ErrMissingCredentials is returned when no model API key is configured.
	ErrMissingCredentials = errors.New("API key is missing, please check environment configuration")

	// ErrMalformedResponse is returned when the model response does not match the analysis schema.
	ErrMalformedResponse = errors.New("malformed analysis response")

	// ErrTransactionIndexOutOfRange is returned when an edit targets a position outside the list.
	ErrTransactionIndexOutOfRange = errors.New("transaction index out of range")

	// ErrInvalidTransaction is returned when an edited transaction fails validation.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoAnalysis is returned when an operation needs a result the session does not have yet.
	ErrNoAnalysis = errors.New("no analysis available")

	// ErrAnalysisInProgress is returned when a session is already analyzing.
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrStaleAnalysis is returned when a job reports back for an analysis that is no longer current.
	ErrStaleAnalysis = errors.New("analysis is no longer current")
)

// UserFacingAnalysisError is the single message shown for any collaborator failure.
const UserFacingAnalysisError = "Analysis failed. Please check your API Key or input format."

// MalformedResponseError describes where a model response broke the schema.
type MalformedResponseError struct {
	Field  string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedResponse, e.Field, e.Reason)
}

// Is lets errors.Is match both ErrMalformedResponse and ErrCollaboratorFailure,
// since a malformed response is a kind of collaborator failure.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse || target == ErrCollaboratorFailure
}

// NewMalformedResponse builds a MalformedResponseError.
func NewMalformedResponse(field, format string, args ...any) error {
	return &MalformedResponseError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps an error from the analysis model call.
type CollaboratorError struct {
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCollaboratorFailure, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is reports ErrCollaboratorFailure for every wrapped collaborator error.
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorFailure
}

// NewCollaboratorError wraps err unless it already is a collaborator failure.
func NewCollaboratorError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCollaboratorFailure) {
		return err
	}
	return &CollaboratorError{Err: err}
}
