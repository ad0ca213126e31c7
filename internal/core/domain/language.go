package domain

// Language is a detected text language code.
type Language string

// Languages recognised by the detector.
const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageMixed   Language = "mixed"
)

// Name returns the display name of the language.
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageHindi:
		return "Hindi"
	case LanguageMixed:
		return "Mixed (English & Hindi)"
	default:
		return "Unknown"
	}
}

// String returns the language code.
func (l Language) String() string {
	return string(l)
}
