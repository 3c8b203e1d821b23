package main

import (
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/pkg/intcode"
)

// logTracer logs each instruction with its raw parameter words.
type logTracer struct {
	log commonlog.Logger
}

func newLogTracer() *logTracer {
	return &logTracer{log: commonlog.GetLogger("intcode.trace")}
}

func (t *logTracer) Trace(ip int64, in intcode.Instruction, mem *intcode.Memory) {
	t.log.Debugf("[%04d] %-16s %s", ip, in.String(), formatParams(ip, in, mem))
}

// formatParams renders the parameter words following the instruction at ip.
// Words past the end of memory are shown as "?".
func formatParams(ip int64, in intcode.Instruction, mem *intcode.Memory) string {
	parts := make([]string, in.Arity())
	for k := range parts {
		v, err := mem.Read(ip + 1 + int64(k))
		if err != nil {
			parts[k] = "?"
			continue
		}
		parts[k] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}
