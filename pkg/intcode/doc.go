// Package intcode implements the IntCode virtual machine: a decode/execute
// engine for programs stored as a flat array of integers, where the same
// memory holds both code and data and a program may rewrite itself.
//
// # Architecture Overview
//
//   - Memory: a fixed-size, bounds-checked store of int64 words. Instruction
//     fetches and operand accesses go through the same Read/Write contract.
//
//   - Decoder: splits an instruction word into an opcode (word mod 100) and
//     per-parameter modes (the remaining decimal digits, least significant
//     first). Absent digits mean Position mode.
//
//   - Engine: the fetch-decode-execute loop. Opcodes are dispatched through
//     a table mapping each opcode to its arity and handler.
//
//   - Channel: the I/O boundary. It holds one input value, handed to every
//     input instruction of the run, and an append-only output log.
//
// # Instruction Set
//
//	1  ADD  a b dst   dst = a + b
//	2  MUL  a b dst   dst = a * b
//	3  IN   dst       dst = input
//	4  OUT  a         append a to output
//	5  JT   a target  if a != 0, jump to target
//	6  JF   a target  if a == 0, jump to target
//	7  LT   a b dst   dst = 1 if a < b, else 0
//	8  EQ   a b dst   dst = 1 if a == b, else 0
//	99 HALT
//
// Destination parameters are always addresses, whatever their mode digit.
//
// # Errors
//
// A run ends Halted or Faulted. Faults are reported as *Fault values
// wrapping ErrInvalidOpcode, ErrOutOfBounds or ErrStepLimitExceeded.
// Load reports ErrMalformedProgram through *ParseError.
//
// # Usage
//
//	mem, err := intcode.Load("3,9,8,9,10,9,4,9,99,-1,8")
//	if err != nil {
//		return err
//	}
//	out, err := intcode.Run(mem, 8) // out == []int64{1}
package intcode
