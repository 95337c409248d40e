// Package tokenizer turns raw text into the padded character n-grams that
// make up a language profile.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"golang.org/x/text/unicode/norm"
)

const (
	pad = " "

	// DefaultMinLen and DefaultMaxLen bound the n-gram length in runes.
	DefaultMinLen = 1
	DefaultMaxLen = 5
)

// Config controls n-gram extraction.
type Config struct {
	MinLen    int    // shortest n-gram, in runes
	MaxLen    int    // longest n-gram, in runes
	Normalize string // "NFC" (default), "NFKC", "NFD", "NFKD" or "none"
}

// DefaultConfig returns the classic 1..5 n-gram setup with NFC input.
func DefaultConfig() Config {
	return Config{
		MinLen:    DefaultMinLen,
		MaxLen:    DefaultMaxLen,
		Normalize: "NFC",
	}
}

// Tokenizer splits text on non-letters and feeds the n-grams of every
// lower-cased, space-padded token into a profile.
type Tokenizer struct {
	minLen int
	maxLen int
	form   *norm.Form
}

// New validates cfg and creates a tokenizer.
func New(cfg Config) (*Tokenizer, error) {
	if cfg.MinLen < 1 {
		return nil, fmt.Errorf("invalid min n-gram length %d (must be >= 1)", cfg.MinLen)
	}
	if cfg.MaxLen < cfg.MinLen {
		return nil, fmt.Errorf("invalid max n-gram length %d (must be >= min length %d)", cfg.MaxLen, cfg.MinLen)
	}
	form, err := parseForm(cfg.Normalize)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{minLen: cfg.MinLen, maxLen: cfg.MaxLen, form: form}, nil
}

// Default returns a tokenizer with DefaultConfig.
func Default() *Tokenizer {
	t, _ := New(DefaultConfig())
	return t
}

// MinLen returns the shortest n-gram length.
func (t *Tokenizer) MinLen() int { return t.minLen }

// MaxLen returns the longest n-gram length.
func (t *Tokenizer) MaxLen() int { return t.maxLen }

func parseForm(name string) (*norm.Form, error) {
	var f norm.Form
	switch strings.ToUpper(name) {
	case "", "NFC":
		f = norm.NFC
	case "NFKC":
		f = norm.NFKC
	case "NFD":
		f = norm.NFD
	case "NFKD":
		f = norm.NFKD
	case "NONE":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid normalization form: %s (must be one of: NFC, NFKC, NFD, NFKD, none)", name)
	}
	return &f, nil
}

// BuildProfile adds all n-grams of text to p and finalizes it.
func (t *Tokenizer) BuildProfile(p *ngram.Profile, text string) error {
	return t.BuildProfileFromReader(p, strings.NewReader(text))
}

// BuildProfileFromReader adds all n-grams read from r to p and finalizes it.
// p is left open when reading fails.
func (t *Tokenizer) BuildProfileFromReader(p *ngram.Profile, r io.Reader) error {
	if err := t.Accumulate(p, r); err != nil {
		return err
	}
	p.Finalize()
	return nil
}

// Accumulate adds all n-grams read from r to p without finalizing it, so
// several sources can feed one profile.
func (t *Tokenizer) Accumulate(p *ngram.Profile, r io.Reader) error {
	if t.form != nil {
		r = t.form.Reader(r)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*maxRunBytes)
	scanner.Split(ScanLetters)

	for scanner.Scan() {
		for _, g := range t.NGrams(scanner.Text()) {
			if _, err := p.Add(g); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed reading text: %w", err)
	}
	return nil
}

// NGrams returns the n-grams of a single token in emission order: all
// windows of MinLen runes first, then MinLen+1, and so on. Windows made only
// of padding are skipped.
func (t *Tokenizer) NGrams(token string) []string {
	token = prepareToken(token)
	if token == "" {
		return nil
	}

	runes := []rune(token)
	var grams []string
	for n := t.minLen; n <= t.maxLen && n <= len(runes); n++ {
		for pos := 0; pos+n <= len(runes); pos++ {
			g := string(runes[pos : pos+n])
			if strings.TrimSpace(g) == "" {
				continue
			}
			grams = append(grams, g)
		}
	}
	return grams
}

// prepareToken lower-cases and pads a token; whitespace-only tokens yield "".
func prepareToken(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return ""
	}
	return pad + token + pad
}
