package remote

import (
	"errors"
	"fmt"
)

// Error is a failed remote operation: a transport failure (Cause set,
// Status zero), a non-success response (Status set) or a response the
// client refused to read (Message only).
type Error struct {
	Op      string // list, update, delete, create
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Cause)
	case e.Message != "":
		return e.Op + ": " + e.Message
	}
	return e.Op + ": failed"
}

func (e *Error) Unwrap() error { return e.Cause }

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool { return e.Status == 404 }

func errNetwork(op string, cause error) *Error {
	return &Error{Op: op, Cause: cause}
}

func errTooLarge(op string) *Error {
	return &Error{Op: op, Message: fmt.Sprintf("response too large (over %d MiB)", maxBody>>20)}
}

func errStatus(op string, status int, msg string) *Error {
	return &Error{Op: op, Status: status, Message: msg}
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.NotFound()
}
