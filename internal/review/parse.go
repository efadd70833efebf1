package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rburns/revcov/internal/findings"
)

// reply is the JSON structure returned by the model.
type reply struct {
	Reviews []findings.Review `json:"reviews"`
	Summary string            `json:"summary"`
}

// parseReply parses a model reply, tolerating a markdown code fence around
// the JSON object.
func parseReply(content string) (reply, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			content = strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		}
	}

	var r reply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return reply{}, fmt.Errorf("invalid JSON reply: %w", err)
	}
	return r, nil
}

// offsetReviews shifts review line numbers from chunk-local to file
// coordinates.
func offsetReviews(reviews []findings.Review, startLine int) []findings.Review {
	if startLine <= 1 {
		return reviews
	}
	out := make([]findings.Review, len(reviews))
	for i, r := range reviews {
		r.Line += startLine - 1
		out[i] = r
	}
	return out
}
