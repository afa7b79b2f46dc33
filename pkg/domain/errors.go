package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEncode is returned when a payload cannot be serialized to JSON.
	ErrEncode = errors.New("payload encoding failed")
	// ErrTransport covers unreachable hosts, deadlines and cancellation.
	ErrTransport = errors.New("transport failure")
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode is returned when a body is not JSON or lacks its success field.
	ErrDecode = errors.New("response decoding failed")
	// ErrApplication is returned when the backend reports an "error" field.
	ErrApplication = errors.New("application error")

	// ErrUnknownElement is returned when an element id is not registered.
	ErrUnknownElement = errors.New("unknown element")
	// ErrNoSelection is returned when an operation needs a selected element.
	ErrNoSelection = errors.New("no element selected")
)

// ErrorKind classifies a dispatch failure.
type ErrorKind string

const (
	KindEncode      ErrorKind = "encode"
	KindTransport   ErrorKind = "transport"
	KindStatus      ErrorKind = "status"
	KindDecode      ErrorKind = "decode"
	KindApplication ErrorKind = "application"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindEncode:
		return ErrEncode
	case KindTransport:
		return ErrTransport
	case KindStatus:
		return ErrStatus
	case KindDecode:
		return ErrDecode
	case KindApplication:
		return ErrApplication
	}
	return nil
}

// DispatchError is the failure half of every dispatch.
// errors.Is matches both the kind sentinel and the wrapped cause.
type DispatchError struct {
	Kind     ErrorKind
	Endpoint string
	Status   int
	// Message is the backend's "error" text for application errors.
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	switch {
	case e.Kind == KindApplication:
		return fmt.Sprintf("%s: %s: %s", e.Endpoint, e.Kind, e.Message)
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s (status %d): %v", e.Endpoint, e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Kind)
}

func (e *DispatchError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ApplicationMessage extracts the backend's error text when err is an application error.
func ApplicationMessage(err error) (string, bool) {
	var de *DispatchError
	if errors.As(err, &de) && de.Kind == KindApplication {
		return de.Message, true
	}
	return "", false
}

// KindOf returns the dispatch error kind of err, or "" if err is not a dispatch failure.
func KindOf(err error) ErrorKind {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
