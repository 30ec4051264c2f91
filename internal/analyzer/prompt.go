package analyzer

import (
	"strings"
)

const (
	SystemPrompt = "Você é um especialista em direito trabalhista brasileiro. Um advogado experiente e versado na lei"

	TruncationMarker = "\n\n[...texto truncado para análise...]\n\n"

	// basicTextLimit caps the text in the basic prompt regardless of any
	// truncation done upstream.
	basicTextLimit = 6000
)

const promptPreamble = "Você é um especialista em direito trabalhista brasileiro, com profundo conhecimento da CLT e jurisprudência do TST.\n"

const schemaExample = `Forneça sua análise em formato JSON válido, seguindo exatamente esta estrutura como referência:
[
  {
    "problema": "Descrição completa do problema 1",
    "tipo": "processual/contradição/fundamentação/prazo",
    "gravidade": "alta/média/baixa",
    "analise": "Análise detalhada do problema",
    "recomendacao": "Recomendação específica para resolver este problema",
    "precedentes": ["Precedente 1", "Precedente 2"]
  }
]
Use linguagem técnica jurídica apropriada, mas garanta que o formato JSON seja exatamente como especificado acima e seja válido.
`

// BuildAdvancedPrompt embeds the legal context and the text as given.
// Instructions are appended verbatim, so whatever the caller sends reaches
// the model unescaped.
func BuildAdvancedPrompt(legalContext, text, instructions string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("Use as seguintes leis e precedentes relevantes para informar sua análise:\n")
	b.WriteString(legalContext)
	b.WriteString("\nAnalise o processo a seguir e identifique todos os problemas e inconsistências:\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(schemaExample)
	b.WriteString("\n")
	b.WriteString(instructions)
	return b.String()
}

// BuildBasicPrompt has no legal context and keeps at most the first 6000
// characters of text, followed by "..." when cut.
func BuildBasicPrompt(text, instructions string) string {
	if runes := []rune(text); len(runes) > basicTextLimit {
		text = string(runes[:basicTextLimit]) + "..."
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("Analise o processo a seguir e identifique todos os problemas e inconsistências:\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(schemaExample)
	b.WriteString(instructions)
	return b.String()
}

// TruncateMiddle keeps the first and last max/2 characters of text joined by
// TruncationMarker. Text of at most max characters is returned unchanged.
func TruncateMiddle(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	half := max / 2
	return string(runes[:half]) + TruncationMarker + string(runes[len(runes)-half:])
}

func firstN(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
