package chunker

import "unicode/utf8"

// Statistics summarises a chunk list. It is informational only.
type Statistics struct {
	TotalChunks        int     `json:"totalChunks"`
	TotalCharacters    int     `json:"totalCharacters"`
	TotalTokens        int     `json:"totalTokens"`
	AverageChunkSize   float64 `json:"averageChunkSize"`
	AverageChunkTokens int     `json:"averageChunkTokens"`
	MinChunkSize       int     `json:"minChunkSize"`
	MaxChunkSize       int     `json:"maxChunkSize"`
}

// Stats computes character and estimated token statistics for chunks.
func Stats(chunks []string) Statistics {
	stats := Statistics{TotalChunks: len(chunks)}
	if len(chunks) == 0 {
		return stats
	}

	for i, chunk := range chunks {
		size := utf8.RuneCountInString(chunk)
		stats.TotalCharacters += size
		if i == 0 || size < stats.MinChunkSize {
			stats.MinChunkSize = size
		}
		if size > stats.MaxChunkSize {
			stats.MaxChunkSize = size
		}
	}

	stats.TotalTokens = ceilDiv(stats.TotalCharacters, CharsPerToken)
	stats.AverageChunkSize = float64(stats.TotalCharacters) / float64(len(chunks))
	stats.AverageChunkTokens = ceilFloat(stats.AverageChunkSize / CharsPerToken)
	return stats
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func ceilFloat(f float64) int {
	i := int(f)
	if float64(i) < f {
		i++
	}
	return i
}
