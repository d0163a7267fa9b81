package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var abbreviations = map[string]map[string]bool{
	"en": set("mr mrs ms dr prof sr jr st vs etc e.g i.e inc ltd co jan feb mar apr jun jul aug sep oct nov dec no"),
	"de": set("dr prof nr bzw usw z.b d.h u.a ca vgl str"),
	"fr": set("m mme mlle dr st etc cf p.ex"),
	"es": set("sr sra srta dr ud uds etc p.ej"),
	"it": set("sig dott prof ecc"),
	"nl": set("dhr mevr dr bijv enz"),
	"pt": set("sr sra dr dra etc"),
	"pl": set("np dr prof itd itp tzn ul"),
	"ru": set("т.е т.д т.п г ул им др см проф"),
	"uk": set("т.д т.п т.ч ім вул р ст див проф др тис млн грн с"),
}

var cjkTerminals = map[rune]bool{'。': true, '！': true, '？': true}

// RuleSplitter is a punctuation-driven sentence splitter with per-language
// non-breaking abbreviations.
type RuleSplitter struct {
	kind   Kind
	lang   string
	abbrev map[string]bool
}

// NewMoses returns a Moses-style splitter for lang.
func NewMoses(lang string) *RuleSplitter {
	return &RuleSplitter{kind: KindMoses, lang: lang, abbrev: abbreviations[lang]}
}

// NewUkrainian returns the Ukrainian splitter.
func NewUkrainian() *RuleSplitter {
	return &RuleSplitter{kind: KindUkrainian, lang: "uk", abbrev: abbreviations["uk"]}
}

func (s *RuleSplitter) Kind() Kind { return s.kind }

// Language returns the language the splitter was built for.
func (s *RuleSplitter) Language() string { return s.lang }

// Split normalizes text to NFC and cuts it after sentence-final punctuation.
func (s *RuleSplitter) Split(text string) []string {
	runes := []rune(norm.NFC.String(text))
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if s.boundary(runes, i, j) {
			if sentence := strings.TrimSpace(string(runes[start:j])); sentence != "" {
				out = append(out, sentence)
			}
			start = j
		}
		i = j - 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

// boundary decides whether the terminal run runes[i:j] ends a sentence.
func (s *RuleSplitter) boundary(runes []rune, i, j int) bool {
	if j >= len(runes) || cjkTerminals[runes[i]] {
		return true
	}
	if !unicode.IsSpace(runes[j]) {
		return false
	}
	k := j
	for k < len(runes) && unicode.IsSpace(runes[k]) {
		k++
	}
	if k < len(runes) && unicode.IsLower(runes[k]) {
		return false
	}
	if runes[i] == '.' && j == i+1 {
		word := wordBefore(runes, i)
		if len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0]) {
			return false
		}
		if s.abbrev[strings.ToLower(word)] {
			return false
		}
	}
	return true
}

func wordBefore(runes []rune, i int) string {
	k := i
	for k > 0 && (unicode.IsLetter(runes[k-1]) || runes[k-1] == '.') {
		k--
	}
	return strings.Trim(string(runes[k:i]), ".")
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’', '」':
		return true
	}
	return false
}
