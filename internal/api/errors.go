package api

import "errors"

// ErrUnauthorized is returned when the remote service rejects the session
// token. By the time a caller sees it the session has already been cleared
// and the auth-expiry handler invoked; callers treat the request as having
// never happened and must not surface their own error message for it.
var ErrUnauthorized = errors.New("api: unauthorized")

// ErrNetwork is wrapped by any failure to obtain a response at all
// (connection refused, DNS, timeout). Distinct from a reachable server
// returning an error envelope.
var ErrNetwork = errors.New("api: network error")

// APIError carries the human-readable message from a status:"error"
// envelope. The server is reachable and responded; the message is meant to
// be shown verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}
