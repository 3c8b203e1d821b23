package intcode

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is the serializable state of an engine: its memory, instruction
// pointer and I/O log. Restoring a Running snapshot resumes the run.
type Snapshot struct {
	Memory  []int64 `cbor:"1,keyasint"`
	IP      int64   `cbor:"2,keyasint"`
	State   State   `cbor:"3,keyasint"`
	Steps   int64   `cbor:"4,keyasint"`
	Input   int64   `cbor:"5,keyasint"`
	Outputs []int64 `cbor:"6,keyasint,omitempty"`

	FaultKind string `cbor:"7,keyasint,omitempty"`
	FaultWord int64  `cbor:"8,keyasint,omitempty"`
	FaultAddr int64  `cbor:"9,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("intcode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

var faultKinds = []error{ErrInvalidOpcode, ErrOutOfBounds, ErrStepLimitExceeded}

// Snapshot captures the engine's current state.
func (e *Engine) Snapshot() *Snapshot {
	s := &Snapshot{
		Memory:  e.mem.Words(),
		IP:      e.ip,
		State:   e.state,
		Steps:   e.steps,
		Input:   e.io.input,
		Outputs: e.io.Outputs(),
	}
	var f *Fault
	if errors.As(e.err, &f) {
		s.FaultKind = f.Kind.Error()
		s.FaultWord = f.Word
		s.FaultAddr = f.Addr
	}
	return s
}

// Restore builds an engine from a snapshot. The engine owns fresh copies
// of the snapshot's memory and outputs.
func Restore(s *Snapshot) (*Engine, error) {
	e := &Engine{
		mem:   NewMemory(s.Memory),
		io:    NewChannel(s.Input),
		ip:    s.IP,
		state: s.State,
		steps: s.Steps,
	}
	e.io.outputs = append(e.io.outputs, s.Outputs...)

	switch s.State {
	case StateRunning, StateHalted:
	case StateFaulted:
		f := &Fault{IP: s.IP, Word: s.FaultWord, Addr: s.FaultAddr}
		for _, k := range faultKinds {
			if k.Error() == s.FaultKind {
				f.Kind = k
			}
		}
		if f.Kind == nil {
			return nil, fmt.Errorf("intcode: restore: unknown fault kind %q", s.FaultKind)
		}
		e.err = f
	default:
		return nil, fmt.Errorf("intcode: restore: invalid state %d", int(s.State))
	}
	return e, nil
}

// Continue turns a snapshot of a run stopped by its step limit back into a
// Running one. The instruction that hit the limit was not executed, so a
// restored engine picks up exactly where the run stopped. It reports false,
// leaving s unchanged, for any other state.
func (s *Snapshot) Continue() bool {
	if s.State != StateFaulted || s.FaultKind != ErrStepLimitExceeded.Error() {
		return false
	}
	s.State = StateRunning
	s.FaultKind = ""
	s.FaultWord = 0
	s.FaultAddr = 0
	return true
}

// MarshalSnapshot serializes a Snapshot to canonical CBOR.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("intcode: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
