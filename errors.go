package calcmv

import (
	"errors"
	"fmt"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var (
	// ErrParse matches every *symbolic.ParseError.
	ErrParse                       = sym.ErrParse
	ErrUnsupportedRegion           = errors.New("unsupported region")
	ErrUnsupportedCoordinateSystem = errors.New("unsupported coordinate system")
	ErrIntegration                 = errors.New("integration failure")
	ErrValidation                  = errors.New("invalid parameters")
	ErrMissingLimit                = errors.New("missing integration limit")
)

// StageError reports which half of a computation failed. It matches
// ErrIntegration and the underlying cause.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error { return []error{ErrIntegration, e.Err} }

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
