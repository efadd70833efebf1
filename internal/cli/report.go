package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rburns/revcov/internal/config"
	"github.com/rburns/revcov/internal/findings"
	"github.com/rburns/revcov/internal/ledger"
	"github.com/rburns/revcov/internal/report"
	"github.com/rburns/revcov/internal/review"
	"github.com/rburns/revcov/internal/scan"
	"github.com/spf13/cobra"
)

var flagCheck bool

var reportCmd = &cobra.Command{
	Use:   "report [dir]",
	Short: "Rebuild the coverage report from the ledger",
	Long:  "Recompute the target set from the working tree, replay the coverage ledger, and rewrite report.json, report.md and badge.json without contacting the review endpoint.",
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

		reg, err := review.RegisterTargets(cfg, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		results, err := findings.Load(outputPath(dir, cfg.Output))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading findings: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		rep := report.Build(store.Commit(), reg, store.Covered(), store.Records(), results)
		if err := report.Write(rep, store.Dir()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		printSummary(rep.CoveredSegments, rep.TotalSegments, rep.CoverageRatio)
		if flagCheck && !rep.Passed() {
			fmt.Fprintf(os.Stderr, "%d segments not reviewed\n", rep.MissedSegments)
			exitCode = ExitMissed
		}
		return nil
	},
}

func outputPath(codeDir, output string) string {
	if filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(codeDir, output)
}

func init() {
	addReviewFlags(reportCmd)
	reportCmd.Flags().BoolVar(&flagCheck, "check", false, "Exit nonzero when any segment is unreviewed")
}
