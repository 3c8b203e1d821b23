package intcode

import "fmt"

// Opcode is the operation selected by the low two decimal digits of an
// instruction word.
type Opcode int64

const (
	OpAdd         Opcode = 1  // add a b -> dst
	OpMultiply    Opcode = 2  // multiply a b -> dst
	OpInput       Opcode = 3  // input -> dst
	OpOutput      Opcode = 4  // output a
	OpJumpIfTrue  Opcode = 5  // jump to target if a != 0
	OpJumpIfFalse Opcode = 6  // jump to target if a == 0
	OpLessThan    Opcode = 7  // dst = a < b ? 1 : 0
	OpEquals      Opcode = 8  // dst = a == b ? 1 : 0
	OpHalt        Opcode = 99 // stop
)

// Mode is a parameter addressing mode.
type Mode int64

const (
	ModePosition  Mode = 0 // parameter is an address
	ModeImmediate Mode = 1 // parameter is the operand
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	}
	return fmt.Sprintf("mode(%d)", int64(m))
}

// MaxParams is the widest parameter list of any instruction.
const MaxParams = 3

// execFunc carries out one instruction. args holds operand values for read
// parameters and raw addresses for the destination parameter. A handler
// that transfers control returns jumped=true and the new instruction pointer.
type execFunc func(e *Engine, args []int64) (target int64, jumped bool, err error)

// OpcodeInfo describes an instruction: how it is named, how many parameter
// words follow it, and what it does.
type OpcodeInfo struct {
	Name   string // Mnemonic used by the disassembler and tracer
	Arity  int    // Parameter words following the opcode word
	Writes bool   // Last parameter is a destination address
	exec   execFunc
}

// opcodeTable maps opcodes to their metadata and handler.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpAdd:         {"ADD", 3, true, execAdd},
	OpMultiply:    {"MUL", 3, true, execMultiply},
	OpInput:       {"IN", 1, true, execInput},
	OpOutput:      {"OUT", 1, false, execOutput},
	OpJumpIfTrue:  {"JT", 2, false, execJumpIfTrue},
	OpJumpIfFalse: {"JF", 2, false, execJumpIfFalse},
	OpLessThan:    {"LT", 3, true, execLessThan},
	OpEquals:      {"EQ", 3, true, execEquals},
	OpHalt:        {"HALT", 0, false, nil},
}

// GetOpcodeInfo returns metadata for an opcode.
func GetOpcodeInfo(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeTable[op]
	return info, ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	if info, ok := opcodeTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int64(op))
}

// Arity returns the number of parameters, or 0 for an unknown opcode.
func (op Opcode) Arity() int {
	return opcodeTable[op].Arity
}

// Width returns the total instruction length in memory cells.
func (op Opcode) Width() int {
	return 1 + op.Arity()
}

// IsJump reports whether the opcode may redirect the instruction pointer.
func (op Opcode) IsJump() bool {
	return op == OpJumpIfTrue || op == OpJumpIfFalse
}

// AllOpcodes returns every defined opcode in ascending order.
func AllOpcodes() []Opcode {
	return []Opcode{
		OpAdd, OpMultiply, OpInput, OpOutput,
		OpJumpIfTrue, OpJumpIfFalse, OpLessThan, OpEquals,
		OpHalt,
	}
}

// ============ Handlers ============

func execAdd(e *Engine, args []int64) (int64, bool, error) {
	return 0, false, e.mem.Write(args[2], args[0]+args[1])
}

func execMultiply(e *Engine, args []int64) (int64, bool, error) {
	return 0, false, e.mem.Write(args[2], args[0]*args[1])
}

func execInput(e *Engine, args []int64) (int64, bool, error) {
	return 0, false, e.mem.Write(args[0], e.io.Input())
}

func execOutput(e *Engine, args []int64) (int64, bool, error) {
	e.io.Output(args[0])
	return 0, false, nil
}

func execJumpIfTrue(e *Engine, args []int64) (int64, bool, error) {
	if args[0] != 0 {
		return args[1], true, nil
	}
	return 0, false, nil
}

func execJumpIfFalse(e *Engine, args []int64) (int64, bool, error) {
	if args[0] == 0 {
		return args[1], true, nil
	}
	return 0, false, nil
}

func execLessThan(e *Engine, args []int64) (int64, bool, error) {
	return 0, false, e.mem.Write(args[2], boolWord(args[0] < args[1]))
}

func execEquals(e *Engine, args []int64) (int64, bool, error) {
	return 0, false, e.mem.Write(args[2], boolWord(args[0] == args[1]))
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
