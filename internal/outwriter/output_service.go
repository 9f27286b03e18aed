package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// extensionJSON reports one backend extension and whether the client accepts it.
type extensionJSON struct {
	Extension  string `json:"extension"`
	Uploadable bool   `json:"uploadable"`
}

// PrintSupportedExtensions outputs the extensions advertised by the backend, marking
// those outside the client allow-list.
func PrintSupportedExtensions(ext schema.SupportedExtensions, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			out := struct {
				Extensions    []extensionJSON `json:"extensions"`
				MaxFileSizeMB float64         `json:"max_file_size_mb"`
			}{MaxFileSizeMB: ext.MaxFileSizeMB, Extensions: []extensionJSON{}}
			for _, e := range ext.Extensions {
				out.Extensions = append(out.Extensions, extensionJSON{Extension: e, Uploadable: schema.IsAllowedExtension(e)})
			}
			return writeJSON(w, out)
		}
		return writeExtensionsTable(w, ext)
	}, "Wrote extensions")
}

func writeExtensionsTable(w io.Writer, ext schema.SupportedExtensions) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Extension", "Uploadable"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, e := range ext.Extensions {
		uploadable := "yes"
		if !schema.IsAllowedExtension(e) {
			uploadable = "no"
		}
		data = append(data, []string{e, uploadable})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Max file size: %s MB\n", strconv.FormatFloat(ext.MaxFileSizeMB, 'f', -1, 64))
	return err
}

// PrintHealth outputs the backend health report.
func PrintHealth(health schema.HealthStatus, apiURL string, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, health)
		}
		status := colorLabel(health.Status, schema.ScoreGreen, cfg.UseColors)
		if health.Status != "healthy" {
			status = colorLabel(health.Status, schema.ScoreRed, cfg.UseColors)
		}
		_, err := fmt.Fprintf(w, "%s %s at %s: %s\n", health.Service, health.Version, apiURL, status)
		return err
	}, "Wrote health")
}

// PrintHistory outputs stored conversations and documentation.
func PrintHistory(conversations []schema.ConversationRecord, docs []schema.DocumentationRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			out := struct {
				Conversations []schema.ConversationRecord  `json:"conversations"`
				Documentation []schema.DocumentationRecord `json:"documentation"`
			}{Conversations: conversations, Documentation: docs}
			if out.Conversations == nil {
				out.Conversations = []schema.ConversationRecord{}
			}
			if out.Documentation == nil {
				out.Documentation = []schema.DocumentationRecord{}
			}
			return writeJSON(w, out)
		}
		return writeHistoryTables(w, conversations, docs, cfg)
	}, "Wrote history")
}

func writeHistoryTables(w io.Writer, conversations []schema.ConversationRecord, docs []schema.DocumentationRecord, cfg *contract.Config) error {
	textWidth := GetMaxDocstringWidth(cfg) / 2

	if _, err := fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("Conversations (%d)", len(conversations)), cfg.UseColors)); err != nil {
		return err
	}
	convTable := tablewriter.NewWriter(w)
	convTable.Header([]string{"ID", "Session", "File", "Language", "Question", "Answer", "Created"})
	var convRows [][]string
	for _, c := range conversations {
		convRows = append(convRows, []string{
			strconv.FormatInt(c.EntryID, 10),
			shortSession(c.SessionID),
			c.Filename,
			c.Language,
			truncateText(c.Question, textWidth),
			truncateText(c.Answer, textWidth),
			c.CreatedAt.Local().Format(historyTimeFormat),
		})
	}
	if err := convTable.Bulk(convRows); err != nil {
		return err
	}
	if err := convTable.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", heading(fmt.Sprintf("Documentation (%d)", len(docs)), cfg.UseColors)); err != nil {
		return err
	}
	docTable := tablewriter.NewWriter(w)
	docTable.Header([]string{"ID", "Session", "File", "Language", "Size", "Created"})
	var docRows [][]string
	for _, d := range docs {
		docRows = append(docRows, []string{
			strconv.FormatInt(d.EntryID, 10),
			shortSession(d.SessionID),
			d.Filename,
			d.Language,
			fmt.Sprintf("%d chars", len([]rune(d.Documentation))),
			d.CreatedAt.Local().Format(historyTimeFormat),
		})
	}
	if err := docTable.Bulk(docRows); err != nil {
		return err
	}
	return docTable.Render()
}

const historyTimeFormat = "2006-01-02 15:04:05"

// shortSession keeps the first block of a UUID session id.
func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
