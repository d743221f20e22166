package translator

// Language identifies one side of the bilingual relay.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguagePortuguese Language = "pt-br"
)

func (l Language) DisplayName() string {
	switch l {
	case LanguagePortuguese:
		return "Brazilian Portuguese"
	default:
		return "English"
	}
}
