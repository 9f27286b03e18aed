package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/apiclient"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	client contract.APIClient
	sess   *core.Session
}

func questionLanguages() []string {
	return append([]string(nil), schema.QuestionLanguages...)
}

// toolError formats a failed call, preferring the backend's detail.
func toolError(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %s", action, apiclient.UserMessage(err, err.Error())))
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	file, err := core.LoadFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.sess.Intake.Submit(ctx, []schema.FileUpload{file})
	if err != nil {
		return toolError("analysis", err), nil
	}

	view := core.BuildAnalysisView(result)
	return jsonResult(struct {
		schema.AnalysisResult
		ComplexityClass schema.ScoreClass `json:"complexity_class"`
		QualityClass    schema.ScoreClass `json:"quality_class"`
	}{result, view.ComplexityClass, view.QualityClass}), nil
}

func (h *toolHandler) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := request.GetString("question", "")
	code := request.GetString("code_content", "")
	path := request.GetString("path", "")
	language := request.GetString("language", "")

	if language != "" && !schema.IsQuestionLanguage(language) {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %q", core.ErrUnsupportedLanguage, language)), nil
	}
	if code == "" && path != "" {
		file, err := core.LoadFile(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		code = file.Text()
	}

	var (
		resp schema.QuestionResponse
		err  error
	)
	if code != "" {
		resp, err = h.sess.QA.AskAbout(ctx, question, code, language)
	} else {
		if language != "" {
			if err := h.sess.QA.SetLanguage(language); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		resp, err = h.sess.QA.Ask(ctx, question)
	}
	if err != nil {
		return toolError("question", err), nil
	}
	return jsonResult(resp), nil
}

func (h *toolHandler) handleGenerateDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		doc schema.DocumentationResponse
		err error
	)
	if path := request.GetString("path", ""); path != "" {
		file, loadErr := core.LoadFile(path)
		if loadErr != nil {
			return mcp.NewToolResultError(loadErr.Error()), nil
		}
		doc, err = h.sess.Docs.Upload(ctx, []schema.FileUpload{file})
	} else {
		doc, err = h.sess.Docs.FromAnalysis(ctx)
	}
	if err != nil {
		return toolError("documentation", err), nil
	}
	return jsonResult(struct {
		schema.DocumentationResponse
		DownloadName string `json:"download_name"`
	}{doc, core.DownloadName(doc.Filename)}), nil
}

func (h *toolHandler) handleSupportedExtensions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ext, err := h.client.SupportedExtensions(ctx)
	if err != nil {
		return toolError("supported extensions", err), nil
	}
	h.sess.SetMaxFileSizeMB(ext.MaxFileSizeMB)
	return jsonResult(ext), nil
}
