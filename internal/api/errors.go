package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes a request failure.
type Kind int

const (
	// KindNetwork means the request never produced a response.
	KindNetwork Kind = iota
	// KindHTTP means the server responded with a non-2xx status.
	KindHTTP
	// KindDecode means the response body could not be parsed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// RequestError is the failure of a single client operation.
type RequestError struct {
	Op     string // operation name, e.g. "list tasks"
	Kind   Kind
	Status int // HTTP status for KindHTTP, 0 otherwise
	Err    error
}

func (e *RequestError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindHTTP && re.Status == http.StatusNotFound
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindNetwork
}
