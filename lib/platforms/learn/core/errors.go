package core

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is the only way a login can fail: the site gives no
// hint whether the user id, the password or the account itself was at fault.
var ErrInvalidCredentials = errors.New("login rejected, check your user id and password")

var ErrTooManyRedirects = errors.New("too many redirects")

// TransportError carries a failed request. Err is nil when the server
// answered with an error status.
type TransportError struct {
	Method     string
	Url        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Url, e.Err.Error())
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Url, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
