package intcode

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Load or by a run wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	ErrInvalidOpcode     = errors.New("invalid opcode")
	ErrOutOfBounds       = errors.New("address out of bounds")
	ErrMalformedProgram  = errors.New("malformed program")
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

// Fault describes the condition that moved an engine into the Faulted state.
type Fault struct {
	Kind error // One of the Err* sentinels
	IP   int64 // Instruction pointer of the faulting instruction
	Word int64 // Instruction word at IP (0 if the fetch itself failed)
	Addr int64 // Offending address, for ErrOutOfBounds
	Err  error // Decoder detail for ErrInvalidOpcode, if any
}

func (f *Fault) Error() string {
	switch f.Kind {
	case ErrOutOfBounds:
		return fmt.Sprintf("%v: address %d at ip=%d", f.Kind, f.Addr, f.IP)
	case ErrStepLimitExceeded:
		return fmt.Sprintf("%v at ip=%d", f.Kind, f.IP)
	}
	if f.Err != nil {
		return fmt.Sprintf("%v at ip=%d", f.Err, f.IP)
	}
	return fmt.Sprintf("%v %d at ip=%d", f.Kind, f.Word, f.IP)
}

func (f *Fault) Unwrap() error {
	return f.Kind
}

// ParseError reports a program token that is not a decimal integer.
type ParseError struct {
	Index int    // Zero-based token position (the address it would load into)
	Token string // The token as it appeared, untrimmed
	Err   error  // Underlying strconv error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: token %d %q: %v", ErrMalformedProgram, e.Index, e.Token, e.Err)
	}
	return fmt.Sprintf("%v: token %d %q", ErrMalformedProgram, e.Index, e.Token)
}

// Is reports ErrMalformedProgram so that errors.Is works without the
// strconv cause hiding the kind.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedProgram
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// boundsError is the internal signal from Memory before an engine adds
// instruction context.
type boundsError struct {
	addr int64
	size int
}

func (e *boundsError) Error() string {
	return fmt.Sprintf("%v: address %d (memory size %d)", ErrOutOfBounds, e.addr, e.size)
}

func (e *boundsError) Unwrap() error {
	return ErrOutOfBounds
}
