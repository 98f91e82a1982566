// Package slug derives URL-safe identifiers from note titles. Titles that
// contain Japanese script are transliterated to Hepburn romaji first; other
// scripts such as Cyrillic, Greek or Hangul go through unidecode.
package slug

import (
	"strings"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSeparator joins slug words when no separator is configured.
const DefaultSeparator = "-"

// ContainsJapanese reports whether s has any Hiragana, Katakana or CJK
// Unified Ideograph code point.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x3040 && r <= 0x309F,
			r >= 0x30A0 && r <= 0x30FF,
			r >= 0x4E00 && r <= 0x9FFF:
			return true
		}
	}
	return false
}

// Generator turns titles into slugs. The Japanese tokenizer is loaded on
// first use so Latin-only runs never pay for the dictionary.
type Generator struct {
	separator string

	once   sync.Once
	tok    *tokenizer.Tokenizer
	tokErr error
}

// NewGenerator creates a generator joining words with separator.
func NewGenerator(separator string) *Generator {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Generator{separator: separator}
}

// Separator returns the configured separator.
func (g *Generator) Separator() string {
	return g.separator
}

// Slugify derives the slug for title. An empty title yields an empty slug;
// callers decide whether that is acceptable.
func (g *Generator) Slugify(title string) string {
	if title == "" {
		return ""
	}
	if ContainsJapanese(title) {
		return g.slugify(g.Transliterate(title))
	}
	return g.slugify(title)
}

// Transliterate splits text into dictionary segments and romanizes each
// one, joining the results with a single space.
func (g *Generator) Transliterate(text string) string {
	segments := g.segments(text)

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		romaji := strings.TrimSpace(Romanize(seg))
		if romaji != "" {
			parts = append(parts, romaji)
		}
	}
	return strings.Join(parts, " ")
}

// segments returns the kana reading of every token, or its surface form
// when the dictionary has no reading (unknown words, symbols, Latin text).
func (g *Generator) segments(text string) []string {
	g.once.Do(func() {
		g.tok, g.tokErr = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	})
	if g.tokErr != nil {
		return strings.Fields(text)
	}

	tokens := g.tok.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if reading, ok := t.Reading(); ok && reading != "" && reading != "*" {
			out = append(out, reading)
			continue
		}
		out = append(out, t.Surface)
	}
	return out
}

// slugify folds accents away, transliterates what is left to ASCII,
// lowercases and collapses every run of characters outside [a-z0-9] into
// one separator.
func (g *Generator) slugify(s string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(unidecode.Unidecode(folded))

	var b strings.Builder
	pending := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteString(g.separator)
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}
