package llm

import "strings"

const SystemPrompt = "You are a meticulous assistant that extracts structured billing data from PDF text. " +
	"Always respond with JSON that strictly matches the provided schema."

const userInstructions = "Analyze the following PDF text and extract any billing related metadata. " +
	"Use the schema fields and return null when information cannot be determined."

// BuildUserPrompt packages the reduced bill text and an optional file name hint.
func BuildUserPrompt(relevantText, fileName string) string {
	var b strings.Builder
	b.WriteString(userInstructions)
	if f := strings.TrimSpace(fileName); f != "" {
		b.WriteString("\nFilename: ")
		b.WriteString(f)
	}
	b.WriteString("\n\n")
	b.WriteString(relevantText)
	return b.String()
}
