package runtime

import "fmt"

// Error is a failure raised by the value model. The interpreter reifies it
// as an instance of the language error constructor called Name.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return e.Name + ": " + e.Message
}

func NewTypeError(format string, args ...any) *Error {
	return &Error{Name: "TypeError", Message: fmt.Sprintf(format, args...)}
}

func NewReferenceError(format string, args ...any) *Error {
	return &Error{Name: "ReferenceError", Message: fmt.Sprintf(format, args...)}
}

func NewRangeError(format string, args ...any) *Error {
	return &Error{Name: "RangeError", Message: fmt.Sprintf(format, args...)}
}

func NewSyntaxError(format string, args ...any) *Error {
	return &Error{Name: "SyntaxError", Message: fmt.Sprintf(format, args...)}
}
