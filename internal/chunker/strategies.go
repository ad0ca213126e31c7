package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// CharsPerToken is the character-to-token estimate.
const CharsPerToken = 4

// breakThreshold is the fraction of a window a sentence break must lie beyond.
const breakThreshold = 0.7

var (
	sentencePattern   = regexp.MustCompile(`[^.!?]*[.!?]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	paragraphPattern  = regexp.MustCompile(`\n\n+`)
)

// EstimateTokens returns ceil(characters/4).
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// ByTokens walks whitespace-normalised text in windows of chunkSize*4 characters.
// A window that does not reach the end of the text is shortened to end just after
// the last '.', '!', '?' or newline, provided that break lies beyond 70% of the window.
// Consecutive chunks overlap by overlap*4 characters.
func ByTokens(text string, chunkSize, overlap int) []string {
	runes := []rune(normaliseWhitespace(text))
	windows := tokenWindows(runes, chunkSize, overlap)

	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		if chunk := strings.TrimSpace(string(runes[w.start:w.end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// window is a [start, end) rune range.
type window struct {
	start, end int
}

func tokenWindows(runes []rune, chunkSize, overlap int) []window {
	if len(runes) == 0 || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	charSize := chunkSize * CharsPerToken
	charOverlap := overlap * CharsPerToken
	n := len(runes)

	var windows []window
	start := 0
	for start < n {
		end := min(start+charSize, n)

		if end < n {
			bp := lastBreak(runes, start, end)
			if bp >= 0 && float64(bp) > float64(start)+float64(charSize)*breakThreshold {
				end = bp + 1
			}
		}

		windows = append(windows, window{start: start, end: end})
		if end >= n {
			break
		}

		next := end - charOverlap
		if next <= start {
			// Overlap as large as the window would never advance.
			next = end
		}
		start = next
	}
	return windows
}

// lastBreak returns the index of the last sentence terminator or newline
// in runes[start+1 : end+1], or -1.
func lastBreak(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		switch runes[i] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}

// BySentences groups sentences into windows of perChunk sentences that
// overlap by overlapSentences.
func BySentences(text string, perChunk, overlapSentences int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if perChunk <= 0 {
		perChunk = DefaultSentencesPerChunk
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}

	var sentences []string
	for _, s := range splitSentences(text) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		end := min(start+perChunk, len(sentences))
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end >= len(sentences) {
			break
		}

		next := end - overlapSentences
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// ByParagraphs splits text on runs of two or more newlines.
func ByParagraphs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var paragraphs []string
	for _, p := range paragraphPattern.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Smart accumulates whole sentences while the estimated token count stays
// within maxTokens. When the next sentence would exceed the budget the current
// buffer is sealed and a new one starts with that sentence. A single sentence
// longer than the budget becomes its own chunk.
//
// overlapTokens is accepted for call-site symmetry with ByTokens; sealed chunks
// do not overlap.
func Smart(text string, maxTokens, overlapTokens int) []string {
	_ = overlapTokens
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		chunks []string
		buf    []string
		tokens int
	)
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceTokens := EstimateTokens(sentence)

		if tokens+sentenceTokens > maxTokens && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = []string{sentence}
			tokens = sentenceTokens
			continue
		}
		buf = append(buf, sentence)
		tokens += sentenceTokens
	}

	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// splitSentences returns the text's sentences with their terminators.
// Text without a terminator is a single sentence, and a trailing fragment
// after the last terminator is kept as the final sentence.
func splitSentences(text string) []string {
	locs := sentencePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(locs)+1)
	for _, loc := range locs {
		sentences = append(sentences, text[loc[0]:loc[1]])
	}
	if tail := text[locs[len(locs)-1][1]:]; strings.TrimSpace(tail) != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func normaliseWhitespace(text string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
}
