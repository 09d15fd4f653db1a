package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is reports whether any error in err's chain is an errorx.Error with the
// given code.
func Is(err error, code Code) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Code == code
	}

	return false
}
