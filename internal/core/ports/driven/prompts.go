package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// Each name has an English and a Hindi variant, see PromptName.
const (
	// PromptRAG asks the LLM to answer from retrieved context.
	// The template expects %s (context) then %s (question).
	PromptRAG = "rag"

	// PromptFallback frames the top chunks returned without an LLM.
	// The template expects one %s placeholder for the joined chunks.
	PromptFallback = "fallback"

	// PromptNoMatch is returned when retrieval finds nothing. No placeholders.
	PromptNoMatch = "no_match"

	// PromptNoDocuments is returned when the store is empty and no LLM answered. No placeholders.
	PromptNoDocuments = "no_documents"
)

// PromptName returns the localised file name of a prompt, e.g. "rag_hi".
func PromptName(name, lang string) string {
	return name + "_" + lang
}

// Prompt languages. Every prompt has one variant per language.
const (
	PromptLangEnglish = "en"
	PromptLangHindi   = "hi"
)

// DefaultPrompts returns the built-in prompt templates keyed by localised name.
// They seed user-editable prompt files and back any prompt that cannot be loaded.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptName(PromptRAG, PromptLangEnglish):         "Based on the following context, answer the question:\n\nContext:\n%s\n\nQuestion: %s\n\nAnswer:",
		PromptName(PromptRAG, PromptLangHindi):           "निम्नलिखित संदर्भ के आधार पर प्रश्न का उत्तर दें:\n\nसंदर्भ:\n%s\n\nप्रश्न: %s\n\nउत्तर:",
		PromptName(PromptFallback, PromptLangEnglish):    "Based on the document:\n\n%s",
		PromptName(PromptFallback, PromptLangHindi):      "निम्नलिखित संदर्भ प्रासंगिक हो सकता है:\n\n%s",
		PromptName(PromptNoMatch, PromptLangEnglish):     "No relevant information found in your documents.",
		PromptName(PromptNoMatch, PromptLangHindi):       "दुर्भाग्यवश, आपके दस्तावेजों में इस प्रश्न का उत्तर नहीं मिला।",
		PromptName(PromptNoDocuments, PromptLangEnglish): "Please upload a document first or ask a question directly.",
		PromptName(PromptNoDocuments, PromptLangHindi):   "कृपया पहले एक दस्तावेज़ अपलोड करें या सीधे प्रश्न पूछें।",
	}
}
