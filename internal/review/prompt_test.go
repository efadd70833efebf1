package review

import (
	"strings"
	"testing"

	"github.com/rburns/revcov/internal/chunk"
)

func TestBuildChunkPrompt(t *testing.T) {
	c := chunk.Chunk{
		Content:   "def main():\n    pass",
		StartLine: 61,
		EndLine:   62,
	}
	prompt := BuildChunkPrompt("src/app.py", "Python", c, []string{"bugs", "security"})

	for _, want := range []string{
		"File: src/app.py",
		"Language: Python",
		"Lines: 61-62",
		"def main():",
		"Potential bugs and logic errors",
		"Security vulnerabilities",
		`"risk_score"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildChunkPrompt_UnknownFocusIgnored(t *testing.T) {
	c := chunk.Chunk{Content: "x", StartLine: 1, EndLine: 1}
	prompt := BuildChunkPrompt("a.go", "Go", c, []string{"nonsense"})
	if strings.Contains(prompt, "focusing on the following aspects") {
		t.Error("unknown focus areas should not produce a focus section")
	}
}

func TestSystemPrompt(t *testing.T) {
	if SystemPrompt("") != defaultSystemPrompt {
		t.Error("empty custom prompt should fall back to default")
	}
	if SystemPrompt("custom") != "custom" {
		t.Error("custom prompt should win")
	}
}

func TestPromptHash_Deterministic(t *testing.T) {
	a := PromptHash("same input")
	b := PromptHash("same input")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if a == PromptHash("different input") {
		t.Error("different inputs should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("EstimateTokens = %d, want 100", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
}
