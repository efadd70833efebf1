package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rburns/revcov/internal/config"
	"github.com/rburns/revcov/internal/ledger"
	"github.com/rburns/revcov/internal/providers"
	"github.com/rburns/revcov/internal/review"
	"github.com/rburns/revcov/internal/scan"
	"github.com/spf13/cobra"
)

// Shared review flags
var (
	flagAPIURL        string
	flagModel         string
	flagContextLength int
	flagMaxLines      int
	flagOverlapRatio  float64
	flagOutput        string
	flagExclude       string
	flagFocus         string
	flagConcurrency   int
	flagSystemPrompt  string
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagAPIURL, "api-url", "", "OpenAI-compatible endpoint base URL")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().IntVar(&flagContextLength, "context-length", 0, "Model context length in tokens")
	cmd.Flags().IntVar(&flagMaxLines, "max-lines", 0, "Maximum lines per review segment")
	cmd.Flags().Float64Var(&flagOverlapRatio, "overlap-ratio", 0, "Fraction of segment size repeated between neighbors")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Findings output file")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude path globs (comma-separated)")
	cmd.Flags().StringVar(&flagFocus, "focus", "", "Review focus areas (comma-separated)")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Segments reviewed in parallel")
	cmd.Flags().StringVar(&flagSystemPrompt, "system-prompt", "", "File containing a custom system prompt")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagAPIURL != "" {
		m["apiURL"] = flagAPIURL
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagContextLength > 0 {
		m["contextLength"] = fmt.Sprintf("%d", flagContextLength)
	}
	if flagMaxLines > 0 {
		m["maxLines"] = fmt.Sprintf("%d", flagMaxLines)
	}
	if flagOverlapRatio > 0 {
		m["overlapRatio"] = fmt.Sprintf("%g", flagOverlapRatio)
	}
	if flagOutput != "" {
		m["output"] = flagOutput
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagFocus != "" {
		m["focus"] = flagFocus
	}
	if flagConcurrency > 0 {
		m["concurrency"] = fmt.Sprintf("%d", flagConcurrency)
	}
	if flagSystemPrompt != "" {
		m["systemPromptFile"] = flagSystemPrompt
	}
	return m
}

func codeDirArg(args []string) (string, error) {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving code dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("code dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

var reviewCmd = &cobra.Command{
	Use:   "review [dir]",
	Short: "Review a code tree and record coverage",
	Long:  "Review every reviewable segment under dir (default: current directory), recording each attempt in the coverage ledger. Rerunning resumes from the ledger and only reviews uncovered segments.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := codeDirArg(args)
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir, buildOverrides())
		if err != nil {
			return err
		}

		store, err := ledger.Open(dir, scan.HeadCommit(dir))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		provider := providers.NewClient(cfg.APIURL, cfg.Model, config.APIKey())
		eng := review.New(cfg, dir, provider, store)
		eng.Progress = os.Stderr

		rep, err := eng.Run(context.Background())
		if err != nil {
			if providers.IsAuthError(err) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitAuthError
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		printSummary(rep.CoveredSegments, rep.TotalSegments, rep.CoverageRatio)
		return nil
	},
}

func printSummary(covered, total int, ratio float64) {
	fmt.Fprintf(os.Stdout, "Coverage: %d/%d segments (%.1f%%)\n", covered, total, ratio*100)
}

func init() {
	addReviewFlags(reviewCmd)
}
