package webdriver

import (
	"errors"
	"fmt"
)

// Error codes from the W3C WebDriver error table used by this package.
const (
	CodeInvalidSessionID  = "invalid session id"
	CodeNoSuchWindow      = "no such window"
	CodeSessionNotCreated = "session not created"
	CodeInvalidArgument   = "invalid argument"
	CodeTimeout           = "timeout"
	CodeUnknownError      = "unknown error"
	CodeJavascriptError   = "javascript error"
)

// Error is an error reported by the remote end.
type Error struct {
	Status     int
	Code       string
	Message    string
	Stacktrace string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("webdriver %s (HTTP %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("webdriver %s (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// HasCode reports whether err is a remote end error with the given code.
func HasCode(err error, code string) bool {
	var wdErr *Error
	if errors.As(err, &wdErr) {
		return wdErr.Code == code
	}
	return false
}

// IsSessionGone reports whether err means the remote session or its window
// no longer exists.
func IsSessionGone(err error) bool {
	return HasCode(err, CodeInvalidSessionID) || HasCode(err, CodeNoSuchWindow)
}
