package outwriter

import (
	"fmt"
	"io"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/markdown"
	"github.com/codesage/codesage/schema"
)

// PrintAnswer outputs one question/answer pair. Text output renders the answer as Markdown.
func PrintAnswer(resp schema.QuestionResponse, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeAnswer(w, resp, cfg)
	}, "Wrote answer")
}

func writeAnswer(w io.Writer, resp schema.QuestionResponse, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, resp)
	}
	if _, err := fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("❓ %s [%s]", resp.Question, resp.Language), cfg.UseColors)); err != nil {
		return err
	}
	rendered, err := markdown.RenderTerminal(resp.Answer, GetTerminalWidth(cfg), cfg.UseColors)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}

// PrintDocumentation outputs generated documentation. With an empty path text
// output is rendered for the terminal; otherwise the raw Markdown is saved to path.
func PrintDocumentation(doc schema.DocumentationResponse, cfg *contract.Config, path string) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, doc)
		}, "Wrote JSON")
	}
	if path != "" {
		return writeWithFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, doc.Documentation)
			return err
		}, "Wrote documentation")
	}
	return writeWithFile("", func(w io.Writer) error {
		return writeDocumentationText(w, doc, cfg)
	}, "Wrote documentation")
}

func writeDocumentationText(w io.Writer, doc schema.DocumentationResponse, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("📚 %s (%s)", doc.Filename, doc.Language), cfg.UseColors)); err != nil {
		return err
	}
	rendered, err := markdown.RenderTerminal(doc.Documentation, GetTerminalWidth(cfg), cfg.UseColors)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}
