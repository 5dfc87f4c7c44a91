package session

import "errors"

// Kind classifies where in the session lifecycle an error happened.
type Kind int

const (
	// KindCreation: remote end unreachable or the session start was rejected.
	KindCreation Kind = iota + 1
	// KindLiveness: the probe on the current session failed. Internal only.
	KindLiveness
	// KindNavigation: the session failed to load the requested address.
	KindNavigation
	// KindExtraction: the session failed to return page markup.
	KindExtraction
	// KindReset: cookie clearing or the return to the blank page failed. Internal only.
	KindReset
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindCreation:
		return "session creation"
	case KindLiveness:
		return "liveness check"
	case KindNavigation:
		return "navigation"
	case KindExtraction:
		return "extraction"
	case KindReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Error wraps a failure from the remote end with the lifecycle step it hit.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " failed"
	}
	return e.Kind.String() + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap annotates err with kind. A nil err stays nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.Kind
	}
	return 0
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
