// Package profanity holds the word blocklist applied to posted messages.
package profanity

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Filter matches whole words against a case-insensitive blocklist
type Filter struct {
	words map[string]struct{}
}

// New builds a filter from a list of words
func New(words ...string) *Filter {
	f := &Filter{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words[w] = struct{}{}
		}
	}
	return f
}

// Parse reads one word per line. Blank lines and lines starting with # are skipped.
func Parse(r io.Reader) (*Filter, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist: %w", err)
	}
	return New(words...), nil
}

// Load reads the blocklist file at path
func Load(path string) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Len reports the number of blocked words
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.words)
}

// Contains reports whether text has any blocked word
func (f *Filter) Contains(text string) bool {
	if f.Len() == 0 {
		return false
	}
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, tok := range tokens {
		if _, blocked := f.words[strings.Trim(tok, "'")]; blocked {
			return true
		}
	}
	return false
}
