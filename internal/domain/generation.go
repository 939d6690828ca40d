package domain

// Prompt is a generation request split into the fixed instruction and the per-query body.
type Prompt struct {
	System string
	User   string
}

// Generation is the generated text plus token usage when the provider reports it.
type Generation struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}
