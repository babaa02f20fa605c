package sentence

import "strings"

// Splitter segments text into sentences for per-sentence question
// answering. Splitting is terminator-based; a minimum length filters out
// abbreviation fragments.
type Splitter struct {
	MinLength int
}

func NewSplitter(minLength int) *Splitter {
	if minLength <= 0 {
		minLength = 8
	}
	return &Splitter{MinLength: minLength}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, 16)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if len([]rune(sentence)) >= s.MinLength {
			out = append(out, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); len([]rune(tail)) >= s.MinLength {
		out = append(out, tail)
	}
	return out
}
