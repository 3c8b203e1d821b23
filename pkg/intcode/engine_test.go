package intcode

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// Helper to build memory from words
func mem(words ...int64) *Memory {
	return NewMemory(words)
}

// Helper to run a program and fail the test on any fault
func mustRun(t *testing.T, m *Memory, input int64) []int64 {
	t.Helper()
	out, err := Run(m, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out
}

// Helper to run a program that is expected to fault
func mustFault(t *testing.T, m *Memory, input int64) *Fault {
	t.Helper()
	_, err := Run(m, input)
	if err == nil {
		t.Fatal("Run succeeded, want fault")
	}
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("error %v (%T) is not a *Fault", err, err)
	}
	return f
}

// ============ Memory Mutation Tests ============

func TestEngineFinalMemory(t *testing.T) {
	tests := []struct {
		name string
		prog []int64
		want []int64
	}{
		{"add self to self", []int64{1, 0, 0, 0, 99}, []int64{2, 0, 0, 0, 99}},
		{"multiply", []int64{2, 3, 0, 3, 99}, []int64{2, 3, 0, 6, 99}},
		{"multiply past halt", []int64{2, 4, 4, 5, 99, 0}, []int64{2, 4, 4, 5, 99, 9801}},
		{"overwrites own halt", []int64{1, 1, 1, 4, 99, 5, 6, 0, 99}, []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{"immediate multiply", []int64{1002, 4, 3, 4, 33}, []int64{1002, 4, 3, 4, 99}},
		{"negative immediate", []int64{1101, 100, -1, 4, 0}, []int64{1101, 100, -1, 4, 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mem(tt.prog...)
			mustRun(t, m, 0)
			if got := m.Words(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("memory = %v, want %v", got, tt.want)
			}
			if m.Len() != len(tt.prog) {
				t.Errorf("memory length = %d, want %d", m.Len(), len(tt.prog))
			}
		})
	}
}

// ============ I/O Tests ============

func TestEngineInputOutput(t *testing.T) {
	out := mustRun(t, mem(3, 0, 4, 0, 99), 7)
	if !reflect.DeepEqual(out, []int64{7}) {
		t.Errorf("output = %v, want [7]", out)
	}
}

func TestEngineInputIsNotConsumed(t *testing.T) {
	// Two input instructions both see the same value.
	out := mustRun(t, mem(3, 0, 3, 1, 4, 0, 4, 1, 99), 5)
	if !reflect.DeepEqual(out, []int64{5, 5}) {
		t.Errorf("output = %v, want [5 5]", out)
	}
}

func TestEngineDefaultInput(t *testing.T) {
	e := NewEngine(mem(3, 0, 4, 0, 99), nil)
	out, err := e.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(out, []int64{DefaultInput}) {
		t.Errorf("output = %v, want [%d]", out, DefaultInput)
	}
}

func TestEngineNoOutput(t *testing.T) {
	out := mustRun(t, mem(99), 0)
	if len(out) != 0 {
		t.Errorf("output = %v, want empty", out)
	}
}

// ============ Comparison and Jump Tests ============

func TestEngineComparisons(t *testing.T) {
	equalsPos := []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}
	lessPos := []int64{3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8}
	equalsImm := []int64{3, 3, 1108, -1, 8, 3, 4, 3, 99}
	lessImm := []int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}

	tests := []struct {
		name  string
		prog  []int64
		input int64
		want  int64
	}{
		{"equals position match", equalsPos, 8, 1},
		{"equals position miss", equalsPos, 7, 0},
		{"less position below", lessPos, 7, 1},
		{"less position equal", lessPos, 8, 0},
		{"equals immediate match", equalsImm, 8, 1},
		{"equals immediate miss", equalsImm, 9, 0},
		{"less immediate below", lessImm, -3, 1},
		{"less immediate above", lessImm, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, mem(tt.prog...), tt.input)
			if !reflect.DeepEqual(out, []int64{tt.want}) {
				t.Errorf("output = %v, want [%d]", out, tt.want)
			}
		})
	}
}

func TestEngineJumps(t *testing.T) {
	jumpPos := []int64{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}
	jumpImm := []int64{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}

	tests := []struct {
		name  string
		prog  []int64
		input int64
		want  int64
	}{
		{"jump-if-false position zero", jumpPos, 0, 0},
		{"jump-if-false position nonzero", jumpPos, 5, 1},
		{"jump-if-true immediate zero", jumpImm, 0, 0},
		{"jump-if-true immediate nonzero", jumpImm, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, mem(tt.prog...), tt.input)
			if !reflect.DeepEqual(out, []int64{tt.want}) {
				t.Errorf("output = %v, want [%d]", out, tt.want)
			}
		})
	}
}

func TestEngineCompareToEight(t *testing.T) {
	prog := "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
		"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

	tests := []struct {
		input int64
		want  int64
	}{
		{7, 999},
		{8, 1000},
		{9, 1001},
	}

	for _, tt := range tests {
		m, err := Load(prog)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		out := mustRun(t, m, tt.input)
		if !reflect.DeepEqual(out, []int64{tt.want}) {
			t.Errorf("input %d: output = %v, want [%d]", tt.input, out, tt.want)
		}
	}
}

// ============ Fault Tests ============

func TestEngineRunsOffEnd(t *testing.T) {
	f := mustFault(t, mem(1, 0, 0, 0), 0)
	if !errors.Is(f, ErrOutOfBounds) {
		t.Errorf("fault kind = %v, want ErrOutOfBounds", f.Kind)
	}
	if f.IP != 4 || f.Addr != 4 {
		t.Errorf("fault ip=%d addr=%d, want ip=4 addr=4", f.IP, f.Addr)
	}
}

func TestEngineEmptyMemory(t *testing.T) {
	f := mustFault(t, mem(), 0)
	if !errors.Is(f, ErrOutOfBounds) {
		t.Errorf("fault kind = %v, want ErrOutOfBounds", f.Kind)
	}
}

func TestEngineFaults(t *testing.T) {
	tests := []struct {
		name string
		prog []int64
		kind error
		ip   int64
		addr int64
	}{
		{"unknown opcode", []int64{42, 0, 0, 0}, ErrInvalidOpcode, 0, 0},
		{"zero opcode", []int64{1101, 1, 1, 5, 0, 99}, ErrInvalidOpcode, 4, 0},
		{"relative mode", []int64{204, 0, 99}, ErrInvalidOpcode, 0, 0},
		{"operand past end", []int64{1, 10, 0, 0, 99}, ErrOutOfBounds, 0, 10},
		{"negative operand address", []int64{1, -1, 0, 0, 99}, ErrOutOfBounds, 0, -1},
		{"write past end", []int64{1101, 1, 1, 50, 99}, ErrOutOfBounds, 0, 50},
		{"truncated parameters", []int64{1, 0}, ErrOutOfBounds, 0, 2},
		{"jump outside memory", []int64{1105, 1, 100}, ErrOutOfBounds, 100, 100},
		{"input to bad address", []int64{3, 9, 99}, ErrOutOfBounds, 0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFault(t, mem(tt.prog...), 0)
			if !errors.Is(f, tt.kind) {
				t.Errorf("fault kind = %v, want %v", f.Kind, tt.kind)
			}
			if f.IP != tt.ip {
				t.Errorf("fault ip = %d, want %d", f.IP, tt.ip)
			}
			if tt.kind == ErrOutOfBounds && f.Addr != tt.addr {
				t.Errorf("fault addr = %d, want %d", f.Addr, tt.addr)
			}
		})
	}
}

func TestEngineFaultMessage(t *testing.T) {
	f := mustFault(t, mem(42), 0)
	msg := f.Error()
	if !strings.Contains(msg, "invalid opcode") || !strings.Contains(msg, "42") {
		t.Errorf("fault message = %q, want opcode and word", msg)
	}
}

func TestEngineFaultKeepsDecodeDetail(t *testing.T) {
	f := mustFault(t, mem(204, 0, 99), 0)
	if f.Err == nil {
		t.Fatal("fault has no decode detail")
	}
	if !errors.Is(f, ErrInvalidOpcode) || !errors.Is(f.Err, ErrInvalidOpcode) {
		t.Errorf("fault = %v, want ErrInvalidOpcode", f)
	}
	msg := f.Error()
	for _, want := range []string{"204", "mode(2)", "parameter 1", "ip=0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("fault message = %q, missing %q", msg, want)
		}
	}
}

func TestEngineStepLimit(t *testing.T) {
	e := NewEngine(mem(1105, 1, 0), NewChannel(0))
	e.SetStepLimit(10)

	_, err := e.Run()
	if !errors.Is(err, ErrStepLimitExceeded) {
		t.Fatalf("err = %v, want ErrStepLimitExceeded", err)
	}
	if e.Steps() != 10 {
		t.Errorf("steps = %d, want 10", e.Steps())
	}
	if e.State() != StateFaulted {
		t.Errorf("state = %v, want faulted", e.State())
	}
}

func TestEngineStepLimitNotReached(t *testing.T) {
	e := NewEngine(mem(1, 0, 0, 0, 99), nil)
	e.SetStepLimit(2)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if e.Steps() != 2 {
		t.Errorf("steps = %d, want 2", e.Steps())
	}
}

// ============ State Machine Tests ============

func TestEngineStep(t *testing.T) {
	e := NewEngine(mem(1, 0, 0, 0, 99), nil)
	if e.State() != StateRunning {
		t.Fatalf("initial state = %v, want running", e.State())
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if e.IP() != 4 {
		t.Errorf("ip = %d, want 4", e.IP())
	}
	if e.State() != StateRunning {
		t.Errorf("state = %v, want running", e.State())
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if e.State() != StateHalted {
		t.Errorf("state = %v, want halted", e.State())
	}

	// Stepping a halted engine does nothing.
	if err := e.Step(); err != nil {
		t.Errorf("Step after halt = %v, want nil", err)
	}
	if e.IP() != 4 || e.Steps() != 2 {
		t.Errorf("after halt ip=%d steps=%d, want ip=4 steps=2", e.IP(), e.Steps())
	}
}

func TestEngineFaultIsSticky(t *testing.T) {
	e := NewEngine(mem(42), nil)
	first := e.Step()
	if first == nil {
		t.Fatal("Step succeeded, want fault")
	}
	if second := e.Step(); second != first {
		t.Errorf("second Step = %v, want %v", second, first)
	}
	if e.Err() != first {
		t.Errorf("Err() = %v, want %v", e.Err(), first)
	}
}

func TestEngineTracer(t *testing.T) {
	var ips []int64
	var ops []Opcode
	e := NewEngine(mem(1, 0, 0, 0, 99), nil)
	e.SetTracer(TracerFunc(func(ip int64, in Instruction, m *Memory) {
		ips = append(ips, ip)
		ops = append(ops, in.Op)
	}))

	if _, err := e.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(ips, []int64{0, 4}) {
		t.Errorf("traced ips = %v, want [0 4]", ips)
	}
	if !reflect.DeepEqual(ops, []Opcode{OpAdd, OpHalt}) {
		t.Errorf("traced ops = %v, want [ADD HALT]", ops)
	}
}

func TestEngineFreshCopyPerRun(t *testing.T) {
	original := mem(1, 0, 0, 0, 99)
	for i := 0; i < 2; i++ {
		m := original.Clone()
		mustRun(t, m, 0)
		if got, _ := m.Read(0); got != 2 {
			t.Errorf("run %d: mem[0] = %d, want 2", i, got)
		}
	}
	if got, _ := original.Read(0); got != 1 {
		t.Errorf("original mem[0] = %d, want 1", got)
	}
}

func TestStateString(t *testing.T) {
	if StateHalted.String() != "halted" {
		t.Errorf("StateHalted.String() = %q", StateHalted.String())
	}
	if State(7).String() != "state(7)" {
		t.Errorf("State(7).String() = %q", State(7).String())
	}
}
