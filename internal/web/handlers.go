package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
)

// Tabs of the index page.
const (
	tabAnalysis = "analysis"
	tabQA       = "qa"
	tabDocs     = "docs"
)

// maxMultipartMemory is the part of an upload kept in memory while parsing.
const maxMultipartMemory = 32 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	tab := r.URL.Query().Get("tab")
	if tab != "" {
		// Switching tabs dismisses errors
		sess.ClearErrors()
	}
	s.render(w, http.StatusOK, sess, tab, "")
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	files, err := readUploads(w, r, s.uploadLimit())
	if err != nil {
		s.render(w, uploadStatus(err), sess, tabAnalysis, err.Error())
		return
	}
	if _, err := sess.Intake.Submit(r.Context(), files); err != nil {
		s.renderError(w, sess, tabAnalysis, err)
		return
	}
	s.render(w, http.StatusOK, sess, tabAnalysis, "")
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.QA.SetLanguage(r.FormValue("language")); err != nil {
		s.renderError(w, sess, tabQA, err)
		return
	}
	s.render(w, http.StatusOK, sess, tabQA, "")
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	question := r.FormValue("question")
	sess.QA.SetDraft(question)
	if _, err := sess.QA.Ask(r.Context(), question); err != nil {
		s.renderError(w, sess, tabQA, err)
		return
	}
	s.render(w, http.StatusOK, sess, tabQA, "")
}

func (s *Server) handleDocsFromAnalysis(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if _, err := sess.Docs.FromAnalysis(r.Context()); err != nil {
		s.renderError(w, sess, tabDocs, err)
		return
	}
	s.render(w, http.StatusOK, sess, tabDocs, "")
}

func (s *Server) handleDocsUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	files, err := readUploads(w, r, s.uploadLimit())
	if err != nil {
		s.render(w, uploadStatus(err), sess, tabDocs, err.Error())
		return
	}
	if _, err := sess.Docs.Upload(r.Context(), files); err != nil {
		s.renderError(w, sess, tabDocs, err)
		return
	}
	s.render(w, http.StatusOK, sess, tabDocs, "")
}

func (s *Server) handleDocsDownload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	doc, ok := sess.Docs.Result()
	if !ok {
		http.Error(w, "no documentation generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.DownloadName(doc.Filename)))
	_, _ = io.WriteString(w, doc.Documentation)
}

// uploadLimit bounds a request body: the file size limit plus room for the form envelope.
func (s *Server) uploadLimit() int64 {
	s.mu.Lock()
	mb := s.maxFileSizeMB
	s.mu.Unlock()
	if mb <= 0 {
		mb = schema.DefaultMaxFileSizeMB
	}
	return int64(mb*1024*1024) + 1<<20
}

// readUploads reads every file of the "file" form field.
func readUploads(w http.ResponseWriter, r *http.Request, limit int64) ([]schema.FileUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	files := make([]schema.FileUpload, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, schema.FileUpload{Name: fh.Filename, Content: content})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return content, nil
}

// uploadStatus maps a failure to read the upload form to a response status.
func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// statusFor maps a panel error to a response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, core.ErrEmptyQuestion),
		errors.Is(err, core.ErrNoCode),
		errors.Is(err, core.ErrNoAnalysis),
		errors.Is(err, core.ErrSingleFile),
		errors.Is(err, core.ErrUnsupportedExtension),
		errors.Is(err, core.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}

// renderError renders the page after a failed action. Backend failures are
// already held in the panel state; precondition failures become a notice.
func (s *Server) renderError(w http.ResponseWriter, sess *core.Session, tab string, err error) {
	status := statusFor(err)
	notice := ""
	if status != http.StatusBadGateway {
		notice = err.Error()
	}
	s.render(w, status, sess, tab, notice)
}

func (s *Server) render(w http.ResponseWriter, status int, sess *core.Session, tab, notice string) {
	data := s.buildPage(sess, tab, notice)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tpl.ExecuteTemplate(w, "index.html", data); err != nil {
		contract.LogWarn("Failed to render page", err)
	}
}

// markdownHTML renders src, falling back to escaped text.
func (s *Server) markdownHTML(src string) template.HTML {
	out, err := s.renderer.RenderHTML(src)
	if err != nil {
		contract.LogWarn("Failed to render markdown", err)
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return out
}
