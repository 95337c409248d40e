package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// maxRunBytes caps a single token. Longer letter runs are cut into several
// tokens at rune boundaries.
const maxRunBytes = 32 * 1024

// ScanLetters is a bufio.SplitFunc that returns each maximal run of Unicode
// letters, cut every maxRunBytes. Every other rune, including invalid UTF-8,
// is a delimiter.
func ScanLetters(data []byte, atEOF bool) (int, []byte, error) {
	start := 0
	for start < len(data) {
		if !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[start:])
		if unicode.IsLetter(r) {
			break
		}
		start += width
	}

	for i := start; i < len(data); {
		if i-start >= maxRunBytes {
			return i, data[start:i], nil
		}
		if !atEOF && !utf8.FullRune(data[i:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[i:])
		if !unicode.IsLetter(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}

	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
