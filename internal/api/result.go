package api

import "errors"

// Result is the outcome of one API call: exactly one of Data or Error is
// populated once the call completes. Message optionally carries the
// human-readable note the server attached to the response.
type Result[T any] struct {
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Error == "" && r.Data != nil
}

// Err converts a failed result into an error, or nil on success.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	if r.Error == "" {
		return errors.New(fallbackHTTP)
	}
	return errors.New(r.Error)
}

func succeeded[T any](data T, message string) Result[T] {
	return Result[T]{Data: &data, Message: message}
}

// failed builds an error result, substituting fallback when msg is blank.
func failed[T any](msg, fallback string) Result[T] {
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = fallbackHTTP
	}
	return Result[T]{Error: msg}
}
