package chunk

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
)

const (
	// contentBudgetRatio is the fraction of the context window reserved for
	// chunk content; the rest is left for the prompt scaffolding and reply.
	contentBudgetRatio = 0.3
	// tokensPerLine is a conservative estimate used to convert a token
	// budget into a line count without tokenizing.
	tokensPerLine = 5
	// minChunkLines keeps chunks from degenerating on tiny context windows.
	minChunkLines = 50
)

// Chunk is a contiguous slice of a file's lines.
type Chunk struct {
	Content    string
	StartLine  int // 1-based, inclusive
	EndLine    int // 1-based, inclusive
	Index      int
	ID         string
	FileSHA256 string
}

// Params controls chunk sizing.
//
// OverlapRatio values that yield an overlap >= the computed chunk size are
// not validated; callers are expected to keep the ratio well below 1.
type Params struct {
	ContextLength int
	MaxLines      int
	OverlapRatio  float64
}

// Split partitions content into ordered, overlapping chunks covering every
// line exactly. Empty content yields a single synthetic chunk spanning
// [1,1] so empty files are still tracked rather than silently dropped.
func Split(content, relPath string, p Params) []Chunk {
	fileHash := hashContent(content)

	lines := splitLines(content)
	total := len(lines)
	if total == 0 {
		return []Chunk{{
			Content:    "",
			StartLine:  1,
			EndLine:    1,
			Index:      0,
			ID:         chunkID(relPath, fileHash, 0),
			FileSHA256: fileHash,
		}}
	}

	size := chunkSize(p.ContextLength, p.MaxLines)
	overlap := int(math.Round(float64(size) * p.OverlapRatio))
	if overlap < 0 {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	index := 0
	for start < total {
		end := start + size
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{
			Content:    strings.Join(lines[start:end], "\n"),
			StartLine:  start + 1,
			EndLine:    end,
			Index:      index,
			ID:         chunkID(relPath, fileHash, index),
			FileSHA256: fileHash,
		})
		if end == total {
			break
		}
		if overlap > 0 {
			start = end - overlap
		} else {
			start = end
		}
		index++
	}

	return chunks
}

// chunkSize derives a stable line count from the context budget: 30% of the
// window as tokens, 5 tokens per line, floored at minChunkLines and capped
// at maxLines.
func chunkSize(contextLength, maxLines int) int {
	tokenBudget := int(float64(contextLength) * contentBudgetRatio)
	if tokenBudget < 1 {
		tokenBudget = 1
	}
	estimated := tokenBudget / tokensPerLine
	if estimated < minChunkLines {
		estimated = minChunkLines
	}
	if estimated > maxLines {
		estimated = maxLines
	}
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// splitLines splits on newlines without producing a trailing empty line for
// newline-terminated content. Empty content has zero lines.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

func chunkID(relPath, fileHash string, index int) string {
	return fmt.Sprintf("%s#%s@%d", relPath, fileHash, index)
}

func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}
