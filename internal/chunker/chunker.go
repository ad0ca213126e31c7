// Package chunker splits extracted text into token-bounded chunks.
//
// Token counts are estimated as one token per four characters. Characters
// are counted as runes so Devanagari text is measured the same way as ASCII.
package chunker

// Default budgets used by ingestion.
const (
	DefaultMaxTokens         = 500
	DefaultOverlap           = 50
	DefaultSentencesPerChunk = 5
	DefaultOverlapSentences  = 1
)

// Strategy names a chunking method.
type Strategy string

// Available strategies.
const (
	StrategySmart      Strategy = "smart"
	StrategyTokens     Strategy = "tokens"
	StrategySentences  Strategy = "sentences"
	StrategyParagraphs Strategy = "paragraphs"
)

// IsValid returns true if the strategy is recognised.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategySmart, StrategyTokens, StrategySentences, StrategyParagraphs:
		return true
	default:
		return false
	}
}

// Chunker applies one configured strategy.
type Chunker struct {
	strategy          Strategy
	maxTokens         int
	overlap           int
	sentencesPerChunk int
	overlapSentences  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithStrategy selects the chunking method. Unknown strategies are ignored.
func WithStrategy(s Strategy) Option {
	return func(c *Chunker) {
		if s.IsValid() {
			c.strategy = s
		}
	}
}

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.maxTokens = tokens
		}
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithSentences sets the window and overlap used by the sentence strategy.
func WithSentences(perChunk, overlap int) Option {
	return func(c *Chunker) {
		if perChunk > 0 {
			c.sentencesPerChunk = perChunk
		}
		if overlap >= 0 {
			c.overlapSentences = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		strategy:          StrategySmart,
		maxTokens:         DefaultMaxTokens,
		overlap:           DefaultOverlap,
		sentencesPerChunk: DefaultSentencesPerChunk,
		overlapSentences:  DefaultOverlapSentences,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.maxTokens {
		c.overlap = c.maxTokens / 4
	}
	if c.overlapSentences >= c.sentencesPerChunk {
		c.overlapSentences = 0
	}

	return c
}

// Strategy returns the configured strategy.
func (c *Chunker) Strategy() Strategy {
	return c.strategy
}

// Chunk splits text with the configured strategy.
func (c *Chunker) Chunk(text string) []string {
	switch c.strategy {
	case StrategyTokens:
		return ByTokens(text, c.maxTokens, c.overlap)
	case StrategySentences:
		return BySentences(text, c.sentencesPerChunk, c.overlapSentences)
	case StrategyParagraphs:
		return ByParagraphs(text)
	default:
		return Smart(text, c.maxTokens, c.overlap)
	}
}
