package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// askCmd analyzes a file and asks questions about it.
var askCmd = &cobra.Command{
	Use:   "ask <file> [question...]",
	Short: "Ask questions about a source file.",
	Long: `Analyze a source file, then ask the CodeSage service about its code.

The question language defaults to the language detected by the analysis.
Use --language to pick another one of the supported languages.

Answers are rendered as Markdown. When a history backend is configured,
each answer is also recorded there.

Examples:
  # Ask a single question
  codesage ask example.js "What does Calculator.add do?"

  # Keep asking until EOF or 'exit'
  codesage ask example.js -i

  # Override the detected language
  codesage ask util.h --language C++ "Is this thread safe?"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, args []string) {
		interactive := viper.GetBool("interactive")
		question := strings.Join(args[1:], " ")
		if !interactive && strings.TrimSpace(question) == "" {
			contract.LogFatal("Cannot ask question", errors.New("provide a question or use --interactive"))
		}
		if err := executeAsk(rootCtx, args[0], question, interactive, cmd.InOrStdin()); err != nil {
			contract.LogFatal("Cannot ask question", err)
		}
	},
}

func executeAsk(ctx context.Context, path, question string, interactive bool, in io.Reader) error {
	sess := newSession(ctx, newClient())
	if err := analyzePath(ctx, sess, path); err != nil {
		return err
	}
	if cfg.Language != "" {
		if err := sess.QA.SetLanguage(cfg.Language); err != nil {
			return err
		}
	}

	ow := outwriter.NewOutWriter()
	if question != "" {
		if err := askOnce(ctx, sess, ow, question); err != nil {
			return err
		}
	}
	if !interactive {
		return nil
	}

	_, _ = fmt.Fprintf(os.Stderr, "Asking about %s in %s. Type 'exit' to quit.\n", path, sess.QA.Language())
	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}
		// A failed question does not end the session
		if err := askOnce(ctx, sess, ow, line); err != nil {
			contract.LogWarn("Question failed", err)
		}
	}
	return scanner.Err()
}

func askOnce(ctx context.Context, sess *core.Session, ow *outwriter.OutWriter, question string) error {
	resp, err := sess.QA.Ask(ctx, question)
	if err != nil {
		return panelError(err, core.QuestionFallback)
	}
	return ow.WriteAnswer(resp, cfg)
}
