package ai

// TextRequest describes one chat completion call.
type TextRequest struct {
	// Model is the backend model identifier, e.g. "gpt-4o-mini".
	Model string

	// System is the system prompt establishing the model's role.
	System string

	// Prompt is the user-role content.
	Prompt string

	// Temperature controls sampling randomness. Scoring calls use low
	// values for stable output.
	Temperature float64

	// MaxTokens bounds the response length. Zero means the backend default.
	MaxTokens int
}
