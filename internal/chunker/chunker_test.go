package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	c := New()

	assert.Equal(t, StrategySmart, c.Strategy())
	assert.Equal(t, DefaultMaxTokens, c.maxTokens)
	assert.Equal(t, DefaultOverlap, c.overlap)
	assert.Equal(t, DefaultSentencesPerChunk, c.sentencesPerChunk)
	assert.Equal(t, DefaultOverlapSentences, c.overlapSentences)
}

func TestNew_Options(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		wantStrategy Strategy
		wantMax      int
		wantOverlap  int
	}{
		{"custom budget", []Option{WithMaxTokens(100), WithOverlap(10)}, StrategySmart, 100, 10},
		{"invalid budget ignored", []Option{WithMaxTokens(0), WithOverlap(-1)}, StrategySmart, DefaultMaxTokens, DefaultOverlap},
		{"overlap clamped", []Option{WithMaxTokens(40), WithOverlap(40)}, StrategySmart, 40, 10},
		{"token strategy", []Option{WithStrategy(StrategyTokens)}, StrategyTokens, DefaultMaxTokens, DefaultOverlap},
		{"unknown strategy ignored", []Option{WithStrategy("bogus")}, StrategySmart, DefaultMaxTokens, DefaultOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.opts...)
			assert.Equal(t, tt.wantStrategy, c.Strategy())
			assert.Equal(t, tt.wantMax, c.maxTokens)
			assert.Equal(t, tt.wantOverlap, c.overlap)
		})
	}
}

func TestChunker_ChunkDispatch(t *testing.T) {
	text := "First paragraph. Still first.\n\nSecond paragraph."

	assert.Equal(t, []string{"First paragraph. Still first.", "Second paragraph."},
		New(WithStrategy(StrategyParagraphs)).Chunk(text))
	assert.Equal(t, []string{"First paragraph. Still first. Second paragraph."},
		New().Chunk(text))
	assert.Equal(t, []string{"First paragraph. Still first. Second paragraph."},
		New(WithStrategy(StrategyTokens)).Chunk(text))
	assert.Equal(t, []string{"First paragraph. Still first. Second paragraph."},
		New(WithStrategy(StrategySentences)).Chunk(text))
}

func TestStrategy_IsValid(t *testing.T) {
	for _, s := range []Strategy{StrategySmart, StrategyTokens, StrategySentences, StrategyParagraphs} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Strategy("").IsValid())
}
