package domain

// AnswerSource tags the path that produced an answer.
// Callers key off this value, so the set is closed.
type AnswerSource string

// Answer sources.
const (
	// SourceNoMatch means retrieval found nothing usable and a canned message was returned.
	SourceNoMatch AnswerSource = "no_match"

	// SourceLLMRAG means the LLM answered from the retrieved context.
	SourceLLMRAG AnswerSource = "llm_rag"

	// SourceFallbackContext means the top chunks were returned verbatim.
	SourceFallbackContext AnswerSource = "fallback_context"

	// SourceLLMDirect means the store was empty and the LLM answered the question alone.
	SourceLLMDirect AnswerSource = "llm_direct"
)

// String returns the string representation.
func (s AnswerSource) String() string {
	return string(s)
}

// Answer is the result of asking a question.
type Answer struct {
	// Question is the question as asked.
	Question string `json:"question"`

	// Text is the answer text.
	Text string `json:"answer"`

	// Language is the detected language of the question.
	Language Language `json:"language"`

	// Chunks are the ranked chunks retrieved for the question.
	Chunks []SimilarityResult `json:"relevantChunks"`

	// Source tags which path produced Text.
	Source AnswerSource `json:"source"`
}

// AskOptions configures a single question.
type AskOptions struct {
	// TopK is the number of chunks to retrieve (default from settings when zero).
	TopK int

	// DisableLLM forces the context fallback even when an LLM is configured.
	DisableLLM bool
}
