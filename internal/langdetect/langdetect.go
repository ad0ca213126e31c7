// Package langdetect classifies text as English or Hindi from its script
// composition and a small list of Hindi function words.
package langdetect

import (
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	devanagariThreshold = 20.0
	latinThreshold      = 80.0
	hindiWordThreshold  = 3

	defaultConfidence = 0.5
)

// hindiWords are common Hindi function words, matched as whole tokens.
var hindiWords = map[string]struct{}{
	"है": {}, "का": {}, "को": {}, "में": {}, "और": {}, "या": {}, "नहीं": {},
	"हाँ": {}, "क्या": {}, "यह": {}, "वह": {}, "मैं": {}, "तुम": {}, "वे": {},
	"ये": {}, "उन्होंने": {}, "किया": {}, "करना": {}, "होगा": {}, "होना": {},
}

// Result is a detected language with its confidence in [0, 1].
type Result struct {
	Language   domain.Language `json:"language"`
	Confidence float64         `json:"confidence"`
}

// Detect returns the dominant language of text. Empty text is English.
func Detect(text string) domain.Language {
	return DetectWithConfidence(text).Language
}

// DetectWithConfidence returns the dominant language and a confidence score.
//
// Text with more than 20% Devanagari characters is Hindi. Otherwise text with
// more than 80% Latin letters is English. Otherwise more than three Hindi
// function words make it Hindi. Anything else defaults to English at 0.5.
func DetectWithConfidence(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Language: domain.LanguageEnglish, Confidence: defaultConfidence}
	}

	s := scan(text)
	devanagariPercent := s.percent(s.devanagari)
	latinPercent := s.percent(s.latin)
	words := countHindiWords(text)

	switch {
	case devanagariPercent > devanagariThreshold:
		return Result{
			Language:   domain.LanguageHindi,
			Confidence: math.Min(1, devanagariPercent/100+float64(words)*0.1),
		}
	case latinPercent > latinThreshold:
		return Result{
			Language:   domain.LanguageEnglish,
			Confidence: math.Min(1, latinPercent/100),
		}
	case words > hindiWordThreshold:
		return Result{
			Language:   domain.LanguageHindi,
			Confidence: math.Min(1, 0.7+float64(words)*0.05),
		}
	default:
		return Result{Language: domain.LanguageEnglish, Confidence: defaultConfidence}
	}
}

type composition struct {
	total      int
	devanagari int
	latin      int
}

func (c composition) percent(n int) float64 {
	if c.total == 0 {
		return 0
	}
	return float64(n) / float64(c.total) * 100
}

func scan(text string) composition {
	var c composition
	for _, r := range text {
		c.total++
		switch {
		case r >= 0x0900 && r <= 0x097F:
			c.devanagari++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			c.latin++
		}
	}
	return c
}

func countHindiWords(text string) int {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r)
	})

	count := 0
	for _, tok := range tokens {
		if _, ok := hindiWords[tok]; ok {
			count++
		}
	}
	return count
}
