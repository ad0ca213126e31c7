package langdetect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.Language
	}{
		{"empty", "", domain.LanguageEnglish},
		{"whitespace", "  \n\t", domain.LanguageEnglish},
		{"english", "Hello world", domain.LanguageEnglish},
		{"english sentence", "This is a pure English test sentence.", domain.LanguageEnglish},
		{"hindi script", "यह एक परीक्षण है", domain.LanguageHindi},
		{"digits only", "12345 !!!", domain.LanguageEnglish},
		{"hindi words among digits", "है का को में " + strings.Repeat("1", 100), domain.LanguageHindi},
		{"three hindi words are not enough", "है का को " + strings.Repeat("1", 100), domain.LanguageEnglish},
		{"english with a hindi greeting", "This is a long English sentence that ends with नमस्ते", domain.LanguageEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}

func TestDetectWithConfidence(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantLanguage   domain.Language
		wantConfidence float64
	}{
		{"empty", "", domain.LanguageEnglish, 0.5},
		{"english script", "Hello world", domain.LanguageEnglish, 10.0 / 11.0},
		{"hindi script capped", "यह एक परीक्षण है", domain.LanguageHindi, 1},
		{"hindi words", "है का को में " + strings.Repeat("1", 100), domain.LanguageHindi, 0.9},
		{"default", "12345 !!!", domain.LanguageEnglish, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectWithConfidence(tt.input)
			assert.Equal(t, tt.wantLanguage, got.Language)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
		})
	}
}

func TestDetectWithConfidence_Bounded(t *testing.T) {
	inputs := []string{
		"a",
		"क",
		strings.Repeat("है ", 50),
		strings.Repeat("है ", 30) + strings.Repeat("1", 2000),
		"mixed मिश्रित text पाठ",
	}

	for _, in := range inputs {
		got := DetectWithConfidence(in)
		assert.GreaterOrEqual(t, got.Confidence, 0.0, in)
		assert.LessOrEqual(t, got.Confidence, 1.0, in)
	}
}

func TestCountHindiWords(t *testing.T) {
	assert.Equal(t, 0, countHindiWords("hello world"))
	assert.Equal(t, 2, countHindiWords("यह एक परीक्षण है"))
	assert.Equal(t, 1, countHindiWords("क्या?"))
	assert.Equal(t, 0, countHindiWords("कहना"), "substrings are not words")
	assert.Equal(t, 2, countHindiWords("नहीं,हाँ"))
}
