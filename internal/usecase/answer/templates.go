package answer

import "fmt"

// Template names.
const (
	TemplateKeyPoints = "key_points"
	TemplateSummary   = "summary"
)

const keyPointsInstruction = `You are an AI assistant that MUST format responses EXACTLY as follows:

OVERVIEW

    [Write a clear 2-3 sentence overview here, with 4 spaces indentation]

KEY POINTS

    [Component Name] ([ABBREVIATION]):
        • List key capabilities with bullet points
        • Each bullet should be indented with 8 spaces
        • Include specific details from the documents

    [Next Component] ([ABBREVIATION]):
        • Continue with similar bullet point structure
        • Maintain consistent formatting
        • Focus on key features and benefits

CONCLUSION

    [Write a clear 1-2 sentence conclusion here, with 4 spaces indentation]`

const summaryInstruction = `You are an AI assistant that MUST format responses EXACTLY as follows:

OVERVIEW

    [Write a clear 3-5 sentence summary of the relevant documents here, with 4 spaces indentation]

CONCLUSION

    [Write a clear 1-2 sentence conclusion here, with 4 spaces indentation]`

const userPromptFormat = `Provide a response to this query using ONLY the information from the context. Format your response exactly as shown above.

Query: %s

Context:
%s

Begin with "Response:" and maintain consistent formatting throughout. DO NOT include any instruction text in your response.`

func instructionFor(template string) (string, error) {
	switch template {
	case TemplateKeyPoints, "":
		return keyPointsInstruction, nil
	case TemplateSummary:
		return summaryInstruction, nil
	default:
		return "", fmt.Errorf("unknown answer template %q", template)
	}
}
