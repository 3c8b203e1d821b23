package intcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble returns a listing of mem decoded linearly from address 0.
// Words that do not decode are shown as DATA; since code and data share
// memory this is a best-effort view, not what a run will necessarily execute.
func Disassemble(mem *Memory) string {
	return DisassembleWithName(mem, "")
}

// DisassembleWithName returns a listing with a name header.
func DisassembleWithName(mem *Memory, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; IntCode program: %d words\n\n", mem.Len()))

	addr := 0
	for addr < mem.Len() {
		line, n := disassembleInstruction(mem, addr)
		sb.WriteString(fmt.Sprintf("%04d  %s\n", addr, line))
		addr += n
	}

	return sb.String()
}

// disassembleInstruction formats the instruction at addr and returns the
// number of cells it occupies.
func disassembleInstruction(mem *Memory, addr int) (string, int) {
	word := mem.words[addr]
	in, err := Decode(word)
	if err != nil {
		return fmt.Sprintf("DATA %d", word), 1
	}

	info := in.Info()
	if addr+info.Arity >= mem.Len() {
		// Truncated instruction at end of memory
		return fmt.Sprintf("DATA %d", word), 1
	}

	parts := make([]string, info.Arity)
	for k := 0; k < info.Arity; k++ {
		raw := mem.words[addr+1+k]
		if in.Modes[k] == ModeImmediate && !(info.Writes && k == info.Arity-1) {
			parts[k] = "#" + strconv.FormatInt(raw, 10)
		} else {
			parts[k] = "[" + strconv.FormatInt(raw, 10) + "]"
		}
	}

	if len(parts) == 0 {
		return info.Name, 1
	}
	return fmt.Sprintf("%-4s %s", info.Name, strings.Join(parts, ", ")), 1 + info.Arity
}
