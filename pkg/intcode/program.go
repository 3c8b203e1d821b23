package intcode

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Parse converts comma-separated program text into words. Whitespace around
// each token and around the whole text is ignored; anything else that is not
// a base-10 integer is a *ParseError.
func Parse(text string) ([]int64, error) {
	tokens := strings.Split(strings.TrimSpace(text), ",")
	words := make([]int64, len(tokens))
	for i, tok := range tokens {
		s := strings.TrimSpace(tok)
		if s == "" {
			return nil, &ParseError{Index: i, Token: tok}
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Token: tok, Err: err}
		}
		words[i] = v
	}
	return words, nil
}

// Format renders words in program text form, the inverse of Parse.
func Format(words []int64) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(w, 10))
	}
	return sb.String()
}

// Load parses program text into a new Memory.
func Load(text string) (*Memory, error) {
	words, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &Memory{words: words}, nil
}

// LoadFile reads and parses the program at path.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	mem, err := Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mem, nil
}
