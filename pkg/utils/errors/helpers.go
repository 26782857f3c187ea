package errors

import "errors"

// IsCode reports whether err carries an Errno with the given code.
func IsCode(err error, code int) bool {
	var e *Errno
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// HTTPStatus returns the HTTP status for err, defaulting to 500.
func HTTPStatus(err error) int {
	var e *Errno
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return 500
}
