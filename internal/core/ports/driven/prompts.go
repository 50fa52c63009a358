package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return an error and the
	// caller falls back to its built-in default.
	Load(name string) (string, error)
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system prompt for grounded answering.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser frames the question and evidence.
	// Format: fmt.Sprintf(prompt, question, information).
	PromptAnswerUser = "answer_user"
)
