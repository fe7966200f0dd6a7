package driven

// PromptStore resolves prompt templates by name. Load returns the built-in
// template when no usable override exists.
type PromptStore interface {
	Load(name string) (string, error)
}

// PromptAnswer names the grounded answer template. It must contain the
// {{context}} and {{question}} placeholders.
const PromptAnswer = "answer"
