package codegen

import "errors"

var (
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrRedefined         = errors.New("redefinition of")
	ErrRedefinedFunction = errors.New("redefinition of function")
	ErrArgumentCount     = errors.New("wrong number of arguments")
	ErrParamCount        = errors.New("parameter count mismatch")
	ErrLvalueRequired    = errors.New("lvalue required")
	ErrVoidValue         = errors.New("void value not ignored as it ought to be")
	ErrReturnValue       = errors.New("return value mismatch")
	ErrConflictingTypes  = errors.New("conflicting types for")
	ErrVerify            = errors.New("invalid function")
	ErrUnsupported       = errors.New("unsupported construct")
)

// flatten splits joined errors into their leaves so that each independent
// failure is reported on its own line.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range multi.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
