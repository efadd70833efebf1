package review

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/rburns/revcov/internal/chunk"
)

const defaultSystemPrompt = "You are an expert code reviewer."

// focusDescriptions maps focus area names to prompt instructions.
var focusDescriptions = map[string]string{
	"security":        "Security vulnerabilities (SQL injection, XSS, buffer overflow, etc.)",
	"performance":     "Performance issues (unnecessary loops, memory leaks, inefficient algorithms, etc.)",
	"bugs":            "Potential bugs and logic errors",
	"maintainability": "Maintainability (code readability, complexity, documentation, etc.)",
	"style":           "Coding style and convention violations",
	"general":         "General code quality issues",
}

const replyFormat = `Respond ONLY with a valid JSON object in this exact format:
{
  "reviews": [
    {"line": <line_number>, "severity": "error|warning|info", "risk_score": <1-10>, "message": "detailed message"},
    ...
  ],
  "summary": "brief overall assessment"
}

Be specific about line numbers and provide clear, actionable feedback.
If there are no issues, use an empty reviews array.`

// SystemPrompt returns the system message for review requests.
func SystemPrompt(custom string) string {
	if custom != "" {
		return custom
	}
	return defaultSystemPrompt
}

// BuildChunkPrompt constructs the user prompt for one chunk of one file.
func BuildChunkPrompt(relPath, language string, c chunk.Chunk, focus []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert code reviewer specializing in %s.\n", language)
	b.WriteString("Review the following code and provide specific, actionable feedback.\n\n")
	fmt.Fprintf(&b, "File: %s\n", relPath)
	fmt.Fprintf(&b, "Language: %s\n", language)
	fmt.Fprintf(&b, "Lines: %d-%d\n", c.StartLine, c.EndLine)

	b.WriteString("\nCode:\n```\n")
	b.WriteString(c.Content)
	b.WriteString("\n```\n\n")

	if section := focusSection(focus); section != "" {
		b.WriteString(section)
		b.WriteString("\n")
	}

	b.WriteString(replyFormat)
	return b.String()
}

func focusSection(focus []string) string {
	var lines []string
	for _, f := range focus {
		if desc, ok := focusDescriptions[f]; ok {
			lines = append(lines, "- "+desc)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Review the code focusing on the following aspects:\n" + strings.Join(lines, "\n") + "\n"
}

// PromptHash returns the hash recorded in the ledger for one prompt.
func PromptHash(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%x", h)
}

// EstimateTokens approximates the token count of text at four characters
// per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}
