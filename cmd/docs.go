package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/outwriter"
	"github.com/codesage/codesage/schema"
	"github.com/spf13/cobra"
)

// docsCmd generates Markdown documentation for a file.
var docsCmd = &cobra.Command{
	Use:   "docs <file>",
	Short: "Generate Markdown documentation for a source file.",
	Long: `Ask the CodeSage service to document a source file.

By default the file is uploaded as is. With --from-analysis the file is
analyzed first and the analyzed code is documented.

The documentation is saved to <name>_documentation.md next to the current
directory unless --output-file is given. Use --stdout to render it in the
terminal instead.

Examples:
  # Save example_documentation.md
  codesage docs example.js

  # Render in the terminal
  codesage docs example.js --stdout

  # Analyze first, then document
  codesage docs main.py --from-analysis --output-file docs/main.md`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, args []string) {
		fromAnalysis, _ := cmd.Flags().GetBool("from-analysis")
		toStdout, _ := cmd.Flags().GetBool("stdout")
		if err := executeDocs(rootCtx, args[0], fromAnalysis, toStdout); err != nil {
			contract.LogFatal("Cannot generate documentation", err)
		}
	},
}

func executeDocs(ctx context.Context, path string, fromAnalysis, toStdout bool) error {
	sess := newSession(ctx, newClient())

	var doc schema.DocumentationResponse
	if fromAnalysis {
		if err := analyzePath(ctx, sess, path); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(os.Stderr, "📚 Documenting analyzed code...")
		var err error
		if doc, err = sess.Docs.FromAnalysis(ctx); err != nil {
			return panelError(err, core.DocsFallback)
		}
	} else {
		file, err := core.LoadFile(path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "📚 Documenting %s...\n", file.Name)
		if doc, err = sess.Docs.Upload(ctx, []schema.FileUpload{file}); err != nil {
			return panelError(err, core.DocsFallback)
		}
	}

	target := ""
	if !toStdout {
		target = cfg.OutputFile
		if target == "" {
			target = core.DownloadName(doc.Filename)
		}
	}
	return outwriter.NewOutWriter().WriteDocumentation(doc, cfg, target)
}
