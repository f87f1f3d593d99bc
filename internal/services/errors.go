package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure the shopper is told about.
type ErrorKind string

const (
	KindAuthenticationRequired    ErrorKind = "AuthenticationRequired"
	KindValidation                ErrorKind = "ValidationError"
	KindEmptyCart                 ErrorKind = "EmptyCart"
	KindNetworkOrServer           ErrorKind = "NetworkOrServerError"
	KindCheckoutFailed            ErrorKind = "CheckoutFailed"
	KindInvalidPaymentCallback    ErrorKind = "InvalidPaymentCallback"
	KindPaymentConfirmationFailed ErrorKind = "PaymentConfirmationFailed"
)

// Error is the typed result of a failed cart, checkout or payment operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
	// Fields maps an input field to its problem for validation failures.
	Fields map[string]string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAuthenticationRequired    = &Error{Kind: KindAuthenticationRequired}
	ErrValidation                = &Error{Kind: KindValidation}
	ErrEmptyCart                 = &Error{Kind: KindEmptyCart}
	ErrNetworkOrServer           = &Error{Kind: KindNetworkOrServer}
	ErrCheckoutFailed            = &Error{Kind: KindCheckoutFailed}
	ErrInvalidPaymentCallback    = &Error{Kind: KindInvalidPaymentCallback}
	ErrPaymentConfirmationFailed = &Error{Kind: KindPaymentConfirmationFailed}
)

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind ErrorKind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}
