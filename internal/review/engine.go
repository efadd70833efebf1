package review

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rburns/revcov/internal/chunk"
	"github.com/rburns/revcov/internal/config"
	"github.com/rburns/revcov/internal/findings"
	"github.com/rburns/revcov/internal/ledger"
	"github.com/rburns/revcov/internal/providers"
	"github.com/rburns/revcov/internal/report"
	"github.com/rburns/revcov/internal/scan"
)

// Engine runs a coverage-tracked review of one code root.
type Engine struct {
	cfg      config.Config
	codeDir  string
	provider providers.Reviewer
	store    *ledger.Store
	registry *ledger.Registry

	// Progress receives per-file status lines; defaults to io.Discard.
	Progress io.Writer
}

// New creates an Engine bound to one store and one run's registry.
func New(cfg config.Config, codeDir string, provider providers.Reviewer, store *ledger.Store) *Engine {
	return &Engine{
		cfg:      cfg,
		codeDir:  codeDir,
		provider: provider,
		store:    store,
		registry: ledger.NewRegistry(),
		Progress: io.Discard,
	}
}

// Registry returns the coverage targets registered by the last Run.
func (e *Engine) Registry() *ledger.Registry {
	return e.registry
}

type fileChunks struct {
	file   scan.File
	chunks []chunk.Chunk
}

// RegisterTargets walks codeDir and registers every reviewable segment as a
// coverage target without contacting the endpoint. Report rebuilds use it to
// recompute the target set from the current working tree.
func RegisterTargets(cfg config.Config, codeDir string) (*ledger.Registry, error) {
	reg := ledger.NewRegistry()
	_, _, err := registerTargets(cfg, codeDir, reg, io.Discard)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func registerTargets(cfg config.Config, codeDir string, reg *ledger.Registry, progress io.Writer) ([]scan.File, []fileChunks, error) {
	files, err := scan.Walk(codeDir, cfg.Exclude)
	if err != nil {
		return nil, nil, err
	}

	params := chunk.Params{
		ContextLength: cfg.ContextLength,
		MaxLines:      cfg.MaxLines,
		OverlapRatio:  cfg.OverlapRatio,
	}

	var work []fileChunks
	for _, f := range files {
		data, err := scan.ReadFile(f)
		if err != nil {
			reg.RecordSkip(f.RelPath, "unreadable")
			fmt.Fprintf(progress, "skipping %s: unreadable\n", f.RelPath)
			continue
		}
		if scan.IsBinary(data) {
			reg.RecordSkip(f.RelPath, "binary")
			fmt.Fprintf(progress, "skipping %s: binary\n", f.RelPath)
			continue
		}
		chunks := chunk.Split(string(data), f.RelPath, params)
		reg.RegisterChunks(f.RelPath, chunks)
		work = append(work, fileChunks{file: f, chunks: chunks})
	}
	return files, work, nil
}

// Run discovers, chunks, registers, and reviews the code root, then writes
// the findings file and the coverage report. Individual review failures are
// recorded in the ledger and do not abort the run; only filesystem-level
// failures are returned.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	files, work, err := registerTargets(e.cfg, e.codeDir, e.registry, e.Progress)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := e.systemPrompt()
	if err != nil {
		return nil, err
	}

	reviewsByFile := make(map[string][]findings.Review)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())

	total := len(work)
	for i, fc := range work {
		fmt.Fprintf(e.Progress, "[%d/%d] reviewing %s (%d chunks)\n", i+1, total, fc.file.RelPath, len(fc.chunks))
		fc := fc
		for _, c := range fc.chunks {
			if e.store.IsCovered(targetRef(fc.file.RelPath, c).Key()) {
				continue // already reviewed for this commit
			}
			c := c
			g.Go(func() error {
				reviews, err := e.reviewChunk(gctx, systemPrompt, fc.file, c)
				if err != nil {
					fmt.Fprintf(e.Progress, "chunk %s failed: %v\n", c.ID, err)
					return nil
				}
				if len(reviews) > 0 {
					mu.Lock()
					reviewsByFile[fc.file.RelPath] = append(reviewsByFile[fc.file.RelPath], reviews...)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := e.assembleResults(files, reviewsByFile)
	if err := findings.Save(e.outputPath(), results); err != nil {
		return nil, err
	}

	rep := report.Build(e.store.Commit(), e.registry, e.store.Covered(), e.store.Records(), results)
	if err := report.Write(rep, e.store.Dir()); err != nil {
		return nil, err
	}
	return rep, nil
}

// reviewChunk performs one attempt and appends exactly one ledger record.
// A failed or canceled attempt appends an error record; coverage is only
// granted after the endpoint answered and the reply parsed.
func (e *Engine) reviewChunk(ctx context.Context, systemPrompt string, f scan.File, c chunk.Chunk) ([]findings.Review, error) {
	userPrompt := BuildChunkPrompt(f.RelPath, f.Language, c, e.cfg.Focus)
	promptHash := PromptHash(systemPrompt + userPrompt)
	ref := targetRef(f.RelPath, c)

	attempt := ledger.Attempt{
		Files:        []ledger.FileRef{ref},
		Model:        e.cfg.Model,
		APIURL:       e.cfg.APIURL,
		MaxContext:   e.cfg.ContextLength,
		PromptHash:   promptHash,
		PromptTokens: EstimateTokens(systemPrompt + userPrompt),
	}

	resp, err := e.provider.Review(ctx, providers.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err == nil {
		var parsed reply
		parsed, err = parseReply(resp.Content)
		if err == nil {
			attempt.Status = ledger.StatusOK
			attempt.PromptTokens = usageOr(resp.PromptTokens, attempt.PromptTokens)
			attempt.CompletionTokens = resp.CompletionTokens
			if appendErr := e.store.Append(attempt); appendErr != nil {
				return nil, appendErr
			}
			return offsetReviews(parsed.Reviews, c.StartLine), nil
		}
	}

	attempt.Status = ledger.StatusError
	attempt.ErrorMessage = err.Error()
	if appendErr := e.store.Append(attempt); appendErr != nil {
		return nil, appendErr
	}
	return nil, err
}

func (e *Engine) assembleResults(files []scan.File, reviewsByFile map[string][]findings.Review) *findings.Results {
	results := &findings.Results{
		TotalFiles: len(files),
		Results:    []findings.FileFindings{},
	}
	for _, f := range files {
		reviews := reviewsByFile[f.RelPath]
		if len(reviews) == 0 {
			continue
		}
		// Parallel chunk completion order is nondeterministic.
		sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].Line < reviews[j].Line })
		results.Results = append(results.Results, findings.FileFindings{
			File:    f.RelPath,
			Reviews: reviews,
		})
	}
	results.FilesWithIssues = len(results.Results)
	return results
}

func (e *Engine) systemPrompt() (string, error) {
	if e.cfg.SystemPromptFile == "" {
		return SystemPrompt(""), nil
	}
	data, err := os.ReadFile(e.cfg.SystemPromptFile)
	if err != nil {
		return "", fmt.Errorf("reading system prompt file: %w", err)
	}
	return SystemPrompt(string(data)), nil
}

func (e *Engine) outputPath() string {
	if filepath.IsAbs(e.cfg.Output) {
		return e.cfg.Output
	}
	return filepath.Join(e.codeDir, e.cfg.Output)
}

func (e *Engine) concurrency() int {
	if e.cfg.Concurrency > 0 {
		return e.cfg.Concurrency
	}
	return 1
}

func targetRef(relPath string, c chunk.Chunk) ledger.FileRef {
	return ledger.FileRef{
		Path:      relPath,
		SHA256:    c.FileSHA256,
		StartLine: c.StartLine,
		EndLine:   c.EndLine,
		ChunkID:   c.ID,
	}
}

func usageOr(reported, estimated int) int {
	if reported > 0 {
		return reported
	}
	return estimated
}
