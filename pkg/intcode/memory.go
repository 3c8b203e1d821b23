package intcode

// Memory is the flat integer store shared by code and data.
// Its size is fixed when it is created; every access is bounds-checked.
type Memory struct {
	words []int64
}

// NewMemory returns a Memory holding a copy of words.
func NewMemory(words []int64) *Memory {
	m := &Memory{words: make([]int64, len(words))}
	copy(m.words, words)
	return m
}

// Len returns the number of addressable cells.
func (m *Memory) Len() int {
	return len(m.words)
}

// Read returns the value at addr.
func (m *Memory) Read(addr int64) (int64, error) {
	if addr < 0 || addr >= int64(len(m.words)) {
		return 0, &boundsError{addr: addr, size: len(m.words)}
	}
	return m.words[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr, value int64) error {
	if addr < 0 || addr >= int64(len(m.words)) {
		return &boundsError{addr: addr, size: len(m.words)}
	}
	m.words[addr] = value
	return nil
}

// Clone returns an independent copy, for running the same program again.
func (m *Memory) Clone() *Memory {
	return NewMemory(m.words)
}

// Words returns a copy of the memory contents.
func (m *Memory) Words() []int64 {
	out := make([]int64, len(m.words))
	copy(out, m.words)
	return out
}

// String returns the contents in program text form.
func (m *Memory) String() string {
	return Format(m.words)
}
