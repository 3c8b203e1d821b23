package intcode

import "fmt"

// Instruction is the decoded view of one instruction word.
type Instruction struct {
	Word  int64
	Op    Opcode
	Modes [MaxParams]Mode
}

// Info returns the opcode metadata for the instruction.
func (in Instruction) Info() OpcodeInfo {
	return opcodeTable[in.Op]
}

// Arity returns the number of parameter words that follow the opcode word.
func (in Instruction) Arity() int {
	return in.Op.Arity()
}

func (in Instruction) String() string {
	info := in.Info()
	if info.Arity == 0 {
		return info.Name
	}
	s := info.Name
	for k := 0; k < info.Arity; k++ {
		if in.Modes[k] == ModeImmediate {
			s += " #"
		} else {
			s += " @"
		}
	}
	return s
}

// ParamMode returns the mode of the k-th parameter (1-indexed) of word.
// Digits beyond those present in word are Position.
func ParamMode(word int64, k int) Mode {
	w := word / 100
	for i := 1; i < k; i++ {
		w /= 10
	}
	return Mode(w % 10)
}

// Decode splits an instruction word into opcode and parameter modes.
// The error wraps ErrInvalidOpcode for an opcode outside the instruction
// set, or for a parameter mode that is neither Position nor Immediate.
func Decode(word int64) (Instruction, error) {
	if word < 0 {
		return Instruction{}, fmt.Errorf("%w: negative word %d", ErrInvalidOpcode, word)
	}
	in := Instruction{Word: word, Op: Opcode(word % 100)}
	info, ok := opcodeTable[in.Op]
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %d", ErrInvalidOpcode, int64(in.Op))
	}
	for k := 0; k < info.Arity; k++ {
		m := ParamMode(word, k+1)
		if m != ModePosition && m != ModeImmediate {
			return Instruction{}, fmt.Errorf("%w: %d has unsupported %v for parameter %d",
				ErrInvalidOpcode, word, m, k+1)
		}
		in.Modes[k] = m
	}
	return in, nil
}
