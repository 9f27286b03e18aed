package outwriter

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/markdown"
	"github.com/codesage/codesage/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// analysisJSON is the JSON shape of an analysis: the full result plus the display classes.
type analysisJSON struct {
	schema.AnalysisResult
	ComplexityClass schema.ScoreClass `json:"complexity_class"`
	QualityClass    schema.ScoreClass `json:"quality_class"`
	HiddenFunctions int               `json:"hidden_functions"`
	HiddenClasses   int               `json:"hidden_classes"`
}

// PrintAnalysisResult outputs an analysis, dispatching based on the output format configured.
func PrintAnalysisResult(result schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	view := core.BuildAnalysisView(result)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisJSON(w, view)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisText(w, view, cfg, duration)
		}, "Wrote analysis")
	}
}

func writeAnalysisJSON(w io.Writer, view core.AnalysisView) error {
	return writeJSON(w, analysisJSON{
		AnalysisResult:  view.Result,
		ComplexityClass: view.ComplexityClass,
		QualityClass:    view.QualityClass,
		HiddenFunctions: view.HiddenFunctions,
		HiddenClasses:   view.HiddenClasses,
	})
}

// writeAnalysisText generates and writes the human-readable analysis.
func writeAnalysisText(w io.Writer, view core.AnalysisView, cfg *contract.Config, duration time.Duration) error {
	r := view.Result
	basic := r.BasicAnalysis
	colors := cfg.UseColors

	quality := "n/a"
	if q := r.AIEnhancement.CodeQualityScore; q != nil {
		quality = fmt.Sprintf("%.1f/10", *q)
	}

	if _, err := fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("📄 %s (%s, %s)", r.Filename, r.Language, r.FileExtension), colors)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Complexity: %s  Quality: %s\n",
		colorLabel(fmt.Sprintf("%.1f", basic.ComplexityScore), view.ComplexityClass, colors),
		colorLabel(quality, view.QualityClass, colors),
	); err != nil {
		return err
	}
	if basic.Summary != "" {
		if _, err := fmt.Fprintf(w, "Summary: %s\n", basic.Summary); err != nil {
			return err
		}
	}

	docWidth := GetMaxDocstringWidth(cfg)
	if len(view.Functions) > 0 {
		if err := writeSection(w, fmt.Sprintf("Functions (%d)", len(basic.Functions)), colors); err != nil {
			return err
		}
		if err := writeFunctionTable(w, view.Functions, docWidth); err != nil {
			return err
		}
		if err := writeHidden(w, view.HiddenFunctions, "functions"); err != nil {
			return err
		}
	}
	if len(view.Classes) > 0 {
		if err := writeSection(w, fmt.Sprintf("Classes (%d)", len(basic.Classes)), colors); err != nil {
			return err
		}
		if err := writeClassTable(w, view.Classes, docWidth); err != nil {
			return err
		}
		if err := writeHidden(w, view.HiddenClasses, "classes"); err != nil {
			return err
		}
	}

	if len(basic.Imports) > 0 {
		if err := writeSection(w, "Imports", colors); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, strings.Join(basic.Imports, ", ")); err != nil {
			return err
		}
	}
	if len(basic.Metrics) > 0 {
		if err := writeSection(w, "Metrics", colors); err != nil {
			return err
		}
		if err := writeMetricsTable(w, basic.Metrics); err != nil {
			return err
		}
	}
	if err := writeList(w, "Suggestions", basic.Suggestions, colors); err != nil {
		return err
	}
	if strings.TrimSpace(r.AIEnhancement.AIInsights) != "" {
		if err := writeSection(w, "AI Insights", colors); err != nil {
			return err
		}
		rendered, err := markdown.RenderTerminal(r.AIEnhancement.AIInsights, GetTerminalWidth(cfg), colors)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, rendered); err != nil {
			return err
		}
	}
	if err := writeList(w, "Enhanced Suggestions", r.AIEnhancement.EnhancedSuggestions, colors); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nAnalysis completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}

func writeSection(w io.Writer, title string, colors bool) error {
	_, err := fmt.Fprintf(w, "\n%s\n", heading(title, colors))
	return err
}

func writeHidden(w io.Writer, hidden int, noun string) error {
	if hidden <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "... and %d more %s\n", hidden, noun)
	return err
}

func writeList(w io.Writer, title string, items []string, colors bool) error {
	if len(items) == 0 {
		return nil
	}
	if err := writeSection(w, title, colors); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "  • %s\n", item); err != nil {
			return err
		}
	}
	return nil
}

func lineRange(start, end int) string {
	if end <= start {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

func writeFunctionTable(w io.Writer, functions []schema.FunctionInfo, docWidth int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Lines", "Params", "Docstring"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, fn := range functions {
		data = append(data, []string{
			fn.Name,
			lineRange(fn.LineStart, fn.LineEnd),
			joinOrDash(fn.Params),
			truncateText(fn.Docstring, docWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeClassTable(w io.Writer, classes []schema.ClassInfo, docWidth int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Lines", "Methods", "Docstring"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, cls := range classes {
		data = append(data, []string{
			cls.Name,
			lineRange(cls.LineStart, cls.LineEnd),
			joinOrDash(cls.Methods),
			truncateText(cls.Docstring, docWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeMetricsTable writes the free-form metrics map sorted by key.
func writeMetricsTable(w io.Writer, metrics map[string]any) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})

	var data [][]string
	for _, key := range slices.Sorted(maps.Keys(metrics)) {
		data = append(data, []string{key, formatMetric(metrics[key])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatMetric(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprint(val)
	}
}
