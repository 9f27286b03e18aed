// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the CodeSage MCP server without starting it.
// All tools share one session, so questions and documentation follow the last analyzed file.
// This is exposed for unit testing.
func NewMCPServer(client contract.APIClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"CodeSage Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		client: client,
		sess:   core.NewSession("", client, mgr),
	}

	// --- 1. Tool: analyze_file ---
	s.AddTool(mcp.NewTool("analyze_file",
		mcp.WithDescription("Analyze a source file: functions, classes, complexity and an AI quality review."),
		mcp.WithString("path", mcp.Description("Path to the source file to analyze."), mcp.Required()),
	), h.handleAnalyzeFile)

	// --- 2. Tool: ask_question ---
	s.AddTool(mcp.NewTool("ask_question",
		mcp.WithDescription("Ask a natural-language question about code. Without code_content or path the last analyzed file is used."),
		mcp.WithString("question", mcp.Description("The question to ask."), mcp.Required()),
		mcp.WithString("code_content", mcp.Description("Code to ask about.")),
		mcp.WithString("path", mcp.Description("Path to a file to ask about.")),
		mcp.WithString("language", mcp.Description("Language of the code. Defaults to the detected language."), mcp.Enum(questionLanguages()...)),
	), h.handleAskQuestion)

	// --- 3. Tool: generate_documentation ---
	s.AddTool(mcp.NewTool("generate_documentation",
		mcp.WithDescription("Generate Markdown documentation for a file. Without path the last analyzed file is used."),
		mcp.WithString("path", mcp.Description("Path to the source file to document.")),
	), h.handleGenerateDocumentation)

	// --- 4. Tool: supported_extensions ---
	s.AddTool(mcp.NewTool("supported_extensions",
		mcp.WithDescription("List the file extensions and maximum file size accepted by the backend."),
	), h.handleSupportedExtensions)

	return s
}

// StartMCPServer starts the CodeSage MCP server on stdio.
func StartMCPServer(_ context.Context, client contract.APIClient, mgr contract.CacheManager) error {
	s := NewMCPServer(client, mgr)
	return server.ServeStdio(s)
}
