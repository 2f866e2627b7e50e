package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies application errors for callers deciding whether to repair, retry or report.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindPartialBatch Kind = "PARTIAL_BATCH_FAILURE"
	KindConflict     Kind = "CONFLICT"
	KindTransport    Kind = "TRANSPORT"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Details map[string]any

	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validation reports malformed input. Nothing has been written when it is returned.
func Validation(code, message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Status: 422, Code: code, Message: message, Details: details}
}

// NotFound reports a referenced plan, day or item that no longer exists.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Status: 404, Code: code, Message: message}
}

// PartialBatch reports a multi-row write where only some rows were applied.
func PartialBatch(message string, requested, applied int, details map[string]any) *Error {
	d := map[string]any{"requested": requested, "applied": applied}
	for k, v := range details {
		d[k] = v
	}
	return &Error{Kind: KindPartialBatch, Status: 409, Code: "PARTIAL_BATCH_FAILURE", Message: message, Details: d}
}

// Conflict reports a request that contradicts an earlier one, such as a reused idempotency key.
func Conflict(code, message string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Status: 409, Code: code, Message: message, Details: details}
}

// Transport wraps a collaborator failure. The core never retries it.
func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Status: 503, Code: "TRANSPORT_ERROR", Message: op, Err: err}
}

// Is reports whether err is an application error of the given kind.
func Is(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
