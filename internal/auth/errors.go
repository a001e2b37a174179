package auth

import (
	"errors"
	"fmt"
)

// Kind classifies a credential-flow failure for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindInvalidCredentials
	KindInvalidRecoveryCode
	KindUnexpectedChallenge
	KindUpstream
	KindPartial
	KindNotFound
)

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidRecoveryCode:
		return "invalid_recovery_code"
	case KindUnexpectedChallenge:
		return "unexpected_challenge"
	case KindUpstream:
		return "upstream_failure"
	case KindPartial:
		return "partial_failure"
	case KindNotFound:
		return "user_not_found"
	}
	return "unknown"
}

// Error is a kind-tagged failure. Detail is safe for clients; the wrapped
// error stays in server-side logs.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from an error chain; KindUnknown when untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// DetailOf extracts the client-safe detail from an error chain.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "internal error"
}

func validationErr(detail string) error {
	return &Error{Kind: KindValidation, Detail: detail}
}

func upstreamErr(detail string, err error) error {
	return &Error{Kind: KindUpstream, Detail: detail, Err: err}
}
