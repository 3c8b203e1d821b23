package intcode

import (
	"strconv"
	"strings"
)

// DefaultInput is the value fed to input instructions when the caller
// does not supply one.
const DefaultInput int64 = 0

// Channel is the I/O boundary of a run. Every input instruction receives
// the same scalar; the value is not consumed. Outputs accumulate in order.
type Channel struct {
	input   int64
	outputs []int64
}

// NewChannel returns a Channel that answers every input instruction with input.
func NewChannel(input int64) *Channel {
	return &Channel{input: input}
}

// Input returns the run's input value.
func (c *Channel) Input() int64 {
	return c.input
}

// Output appends v to the output log.
func (c *Channel) Output(v int64) {
	c.outputs = append(c.outputs, v)
}

// Outputs returns a copy of the output log.
func (c *Channel) Outputs() []int64 {
	out := make([]int64, len(c.outputs))
	copy(out, c.outputs)
	return out
}

// Last returns the most recent output, if any.
func (c *Channel) Last() (int64, bool) {
	if len(c.outputs) == 0 {
		return 0, false
	}
	return c.outputs[len(c.outputs)-1], true
}

// Digits concatenates the decimal forms of all outputs.
func (c *Channel) Digits() string {
	var sb strings.Builder
	for _, v := range c.outputs {
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}
