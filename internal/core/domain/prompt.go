package domain

import "strings"

// Prompt template placeholders.
const (
	PlaceholderContext  = "{{context}}"
	PlaceholderQuestion = "{{question}}"
)

// DefaultAnswerPrompt is the built-in grounded answer template.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultAnswerPrompt = `You are a helpful assistant that answers questions based on financial, healthcare, and business documents.

IMPORTANT INSTRUCTIONS:
1. Answer the question using ONLY the information in the provided context
2. ALWAYS cite your sources using the format [Source X] where X is the source number
3. If the information is NOT in the provided context, you MUST respond with: "` + RefusalText + `"
4. Do not make up or infer information not explicitly stated in the context
5. Be clear, concise, and professional
6. Include relevant document names and page references when citing
7. NEVER return an empty response - always provide an answer or state you don't have the information

CONTEXT FROM KNOWLEDGE BASE:
{{context}}

USER QUESTION: {{question}}

Please provide your answer with proper citations:`

// RenderPrompt substitutes the context block and question into tmpl.
// Substitution is a single pass, so placeholder text inside the context
// or the question is left as is.
func RenderPrompt(tmpl, context, question string) string {
	r := strings.NewReplacer(PlaceholderContext, context, PlaceholderQuestion, question)
	return r.Replace(tmpl)
}
