package intcode

import (
	"errors"
	"fmt"
)

// State is the execution state of an Engine.
type State int

const (
	StateRunning State = iota // initial; more instructions to execute
	StateHalted               // terminal; reached opcode 99
	StateFaulted              // terminal; a fatal condition stopped the run
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Tracer observes each instruction immediately before it executes.
type Tracer interface {
	Trace(ip int64, in Instruction, mem *Memory)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ip int64, in Instruction, mem *Memory)

// Trace calls f.
func (f TracerFunc) Trace(ip int64, in Instruction, mem *Memory) {
	f(ip, in, mem)
}

// Engine executes a program held in Memory. An Engine and its Memory belong
// to a single run and must not be shared between goroutines.
type Engine struct {
	mem *Memory
	io  *Channel

	ip    int64 // Instruction pointer
	state State
	err   error
	steps int64 // Instructions executed, including the final halt

	tracer    Tracer
	stepLimit int64 // 0 = unbounded
}

// NewEngine creates an Engine with the instruction pointer at 0.
// mem is mutated in place by the run.
func NewEngine(mem *Memory, io *Channel) *Engine {
	if io == nil {
		io = NewChannel(DefaultInput)
	}
	return &Engine{mem: mem, io: io}
}

// SetTracer installs a tracer, or removes it when t is nil.
func (e *Engine) SetTracer(t Tracer) {
	e.tracer = t
}

// SetStepLimit bounds the number of instructions a run may execute.
// Exceeding it faults with ErrStepLimitExceeded. Zero removes the bound.
func (e *Engine) SetStepLimit(n int64) {
	e.stepLimit = n
}

// Memory returns the memory the engine is running against.
func (e *Engine) Memory() *Memory { return e.mem }

// Channel returns the engine's I/O channel.
func (e *Engine) Channel() *Channel { return e.io }

// IP returns the current instruction pointer.
func (e *Engine) IP() int64 { return e.ip }

// State returns the current execution state.
func (e *Engine) State() State { return e.state }

// Steps returns the number of instructions executed so far.
func (e *Engine) Steps() int64 { return e.steps }

// Err returns the fault that stopped the engine, or nil.
func (e *Engine) Err() error { return e.err }

// Run steps the engine until it halts or faults and returns the output log.
// On a fault the returned error is a *Fault.
func (e *Engine) Run() ([]int64, error) {
	for e.state == StateRunning {
		if err := e.Step(); err != nil {
			return nil, err
		}
	}
	if e.state == StateFaulted {
		return nil, e.err
	}
	return e.io.Outputs(), nil
}

// Step executes exactly one instruction. Stepping a halted engine is a
// no-op; stepping a faulted engine returns its fault again.
func (e *Engine) Step() error {
	switch e.state {
	case StateHalted:
		return nil
	case StateFaulted:
		return e.err
	}

	word, err := e.mem.Read(e.ip)
	if err != nil {
		return e.fault(ErrOutOfBounds, 0, e.ip)
	}
	in, err := Decode(word)
	if err != nil {
		f := e.fault(ErrInvalidOpcode, word, 0)
		f.Err = err
		return f
	}
	if e.stepLimit > 0 && e.steps >= e.stepLimit {
		return e.fault(ErrStepLimitExceeded, word, 0)
	}

	if e.tracer != nil {
		e.tracer.Trace(e.ip, in, e.mem)
	}
	e.steps++

	info := opcodeTable[in.Op]
	if in.Op == OpHalt {
		e.state = StateHalted
		return nil
	}

	var buf [MaxParams]int64
	args := buf[:info.Arity]
	for k := range args {
		addr := e.ip + 1 + int64(k)
		raw, err := e.mem.Read(addr)
		if err != nil {
			return e.fault(ErrOutOfBounds, word, addr)
		}
		if (info.Writes && k == info.Arity-1) || in.Modes[k] == ModeImmediate {
			args[k] = raw
			continue
		}
		v, err := e.mem.Read(raw)
		if err != nil {
			return e.fault(ErrOutOfBounds, word, raw)
		}
		args[k] = v
	}

	target, jumped, err := info.exec(e, args)
	if err != nil {
		var be *boundsError
		if errors.As(err, &be) {
			return e.fault(ErrOutOfBounds, word, be.addr)
		}
		return e.fault(err, word, 0)
	}

	if jumped {
		e.ip = target
	} else {
		e.ip += int64(1 + info.Arity)
	}
	return nil
}

func (e *Engine) fault(kind error, word, addr int64) *Fault {
	f := &Fault{Kind: kind, IP: e.ip, Word: word, Addr: addr}
	e.state = StateFaulted
	e.err = f
	return f
}

// Run executes mem with a fresh channel holding input and returns the
// output log. mem is modified in place.
func Run(mem *Memory, input int64) ([]int64, error) {
	return NewEngine(mem, NewChannel(input)).Run()
}
