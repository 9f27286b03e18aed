package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/apiclient"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/outwriter"
	"github.com/codesage/codesage/schema"
	"github.com/spf13/cobra"
)

// analyzeCmd sends one file to the service and prints the analysis.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a source file for structure, complexity and quality.",
	Long: `Upload a source file to the CodeSage service and display the analysis.

Shows:
- Detected language, complexity score and AI quality score
- Functions and classes with their line ranges
- Imports, metrics and improvement suggestions
- AI insights rendered as Markdown

Results are cached per file content, so analyzing an unchanged file again
does not reach the service.

Examples:
  # Analyze a file
  codesage analyze example.js

  # Emit JSON for scripting
  codesage analyze main.py --output json --output-file analysis.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		if err := executeAnalyze(rootCtx, args[0]); err != nil {
			contract.LogFatal("Cannot analyze file", err)
		}
	},
}

func executeAnalyze(ctx context.Context, path string) error {
	sess := newSession(ctx, newClient())
	start := time.Now()
	if err := analyzePath(ctx, sess, path); err != nil {
		return err
	}
	snap := sess.Workspace.Snapshot()
	return outwriter.NewOutWriter().WriteAnalysis(*snap.Result, cfg, time.Since(start))
}

// analyzePath loads path into the session workspace.
func analyzePath(ctx context.Context, sess *core.Session, path string) error {
	file, err := core.LoadFile(path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Analyzing %s...\n", file.Name)
	if _, err := sess.Intake.Submit(ctx, []schema.FileUpload{file}); err != nil {
		return panelError(err, core.AnalyzeFallback)
	}
	return nil
}

// panelError keeps precondition errors as they are and reduces backend
// failures to the message the service gave, or fallback.
func panelError(err error, fallback string) error {
	if core.IsPrecondition(err) {
		return err
	}
	return errors.New(apiclient.UserMessage(err, fallback))
}
