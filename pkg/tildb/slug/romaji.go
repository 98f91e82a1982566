package slug

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

const (
	sokuon         = 'っ'
	sokuonKatakana = 'ッ'
	longMark       = 'ー'
)

// hepburn rewrites the Kunrei-style spellings unidecode uses for single kana.
var hepburn = map[string]string{
	"hu": "fu",
	"zi": "ji",
	"di": "ji",
	"du": "zu",
	"wi": "i",
	"we": "e",
}

func isKana(r rune) bool {
	return (r >= 0x3041 && r <= 0x3096) || (r >= 0x30A1 && r <= 0x30FA)
}

// toHiragana folds katakana letters into the hiragana block.
func toHiragana(r rune) rune {
	if r >= 'ァ' && r <= 'ヶ' {
		return r - 0x60
	}
	return r
}

func isSmallVowel(r rune) bool {
	switch toHiragana(r) {
	case 'ぁ', 'ぃ', 'ぅ', 'ぇ', 'ぉ':
		return true
	}
	return false
}

func isSmallY(r rune) bool {
	switch toHiragana(r) {
	case 'ゃ', 'ゅ', 'ょ':
		return true
	}
	return false
}

// syllable returns the Hepburn spelling of a single kana rune.
func syllable(r rune) string {
	s := unidecode.Unidecode(string(r))
	if h, ok := hepburn[s]; ok {
		return h
	}
	return s
}

// Romanize converts kana to modified Hepburn romaji. Runes that are not kana
// are copied through unchanged.
func Romanize(text string) string {
	var out []byte
	prev := ""
	double := false

	for _, r := range text {
		switch {
		case r == sokuon || r == sokuonKatakana:
			double = true
			continue
		case r == longMark:
			if v := lastVowel(out); v != 0 {
				out = append(out, v)
			}
			prev = ""
			continue
		case !isKana(r):
			out = append(out, string(r)...)
			prev = ""
			double = false
			continue
		}

		syl := syllable(r)
		if syl == "" {
			continue
		}

		switch {
		case isSmallY(r) && strings.HasSuffix(prev, "i"):
			out = out[:len(out)-len(prev)]
			syl = yoon(prev, syl)
		case isSmallVowel(r) && prev != "":
			out = out[:len(out)-len(prev)]
			syl = replaceVowel(prev, syl)
		}

		if double {
			out = append(out, geminate(syl)...)
			double = false
		}
		out = append(out, syl...)
		prev = syl
	}

	return string(out)
}

// yoon merges an i-row syllable with a following small ya, yu or yo.
func yoon(base, small string) string {
	stem := strings.TrimSuffix(base, "i")
	if strings.HasSuffix(stem, "sh") || strings.HasSuffix(stem, "ch") || strings.HasSuffix(stem, "j") {
		return stem + small[len(small)-1:]
	}
	return stem + small
}

// replaceVowel swaps the final vowel of base for a small vowel, as in fa,
// ti or she. A bare u becomes w.
func replaceVowel(base, small string) string {
	if base == "u" {
		return "w" + small
	}
	if isVowel(base[len(base)-1]) {
		base = base[:len(base)-1]
	}
	return base + small
}

// geminate returns the consonant prefix a preceding sokuon adds.
func geminate(syl string) string {
	if strings.HasPrefix(syl, "ch") {
		return "t"
	}
	c := syl[0]
	if isVowel(c) {
		return ""
	}
	return string(c)
}

func lastVowel(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	c := b[len(b)-1]
	if isVowel(c) {
		return c
	}
	return 0
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	}
	return false
}
