package web

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/schema"
)

// pageData is everything the index template shows.
type pageData struct {
	Tab        string
	Notice     string
	Accept     string
	MaxSizeMB  float64
	Analysis   analysisPanel
	QA         qaPanel
	Docs       docsPanel
	HasCode    bool
	Filename   string
	CodeLength int
}

type panelStatus struct {
	State   schema.PanelState
	Message string
}

type analysisPanel struct {
	panelStatus
	View     *core.AnalysisView
	Quality  string
	Insights template.HTML
}

type qaEntry struct {
	Question string
	Language string
	Answer   template.HTML
}

type qaPanel struct {
	panelStatus
	Languages []string
	Language  string
	Draft     string
	Log       []qaEntry
}

type docsPanel struct {
	panelStatus
	Result       *schema.DocumentationResponse
	HTML         template.HTML
	DownloadName string
}

var templateFuncs = template.FuncMap{
	"lines": func(start, end int) string {
		if end <= start {
			return fmt.Sprint(start)
		}
		return fmt.Sprintf("%d-%d", start, end)
	},
	"join": strings.Join,
	"score": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
}

func (s *Server) buildPage(sess *core.Session, tab, notice string) pageData {
	switch tab {
	case tabAnalysis, tabQA, tabDocs:
	default:
		tab = tabAnalysis
	}

	s.mu.Lock()
	maxSize := s.maxFileSizeMB
	s.mu.Unlock()
	if maxSize <= 0 {
		maxSize = schema.DefaultMaxFileSizeMB
	}

	data := pageData{
		Tab:       tab,
		Notice:    notice,
		Accept:    strings.Join(schema.AllowedExtensions, ","),
		MaxSizeMB: maxSize,
	}

	snap := sess.Workspace.Snapshot()
	if snap.HasAnalysis() {
		data.HasCode = true
		data.Filename = snap.Result.Filename
		data.CodeLength = len([]rune(snap.Code))

		view := core.BuildAnalysisView(*snap.Result)
		data.Analysis.View = &view
		data.Analysis.Quality = "n/a"
		if q := snap.Result.AIEnhancement.CodeQualityScore; q != nil {
			data.Analysis.Quality = fmt.Sprintf("%.1f/10", *q)
		}
		if strings.TrimSpace(snap.Result.AIEnhancement.AIInsights) != "" {
			data.Analysis.Insights = s.markdownHTML(snap.Result.AIEnhancement.AIInsights)
		}
	}
	data.Analysis.State, data.Analysis.Message = sess.Intake.State()

	data.QA.State, data.QA.Message = sess.QA.State()
	data.QA.Languages = schema.QuestionLanguages
	data.QA.Language = sess.QA.Language()
	data.QA.Draft = sess.QA.Draft()
	for _, entry := range sess.QA.Log() {
		data.QA.Log = append(data.QA.Log, qaEntry{
			Question: entry.Question,
			Language: entry.Language,
			Answer:   s.markdownHTML(entry.Answer),
		})
	}

	data.Docs.State, data.Docs.Message = sess.Docs.State()
	if doc, ok := sess.Docs.Result(); ok {
		data.Docs.Result = &doc
		data.Docs.HTML = s.markdownHTML(doc.Documentation)
		data.Docs.DownloadName = core.DownloadName(doc.Filename)
	}

	return data
}
