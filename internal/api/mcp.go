package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Jackiech6/voice-rag/internal/ingest"
)

// NewMCPServer exposes the knowledge base over the Model Context Protocol:
// ask questions, ingest files, list and delete documents.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"voice-rag",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("voice-rag — document knowledge base with retrieval-grounded answers and citations."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_documents",
			mcp.WithDescription("Ask a question grounded on the ingested documents. Returns an answer with source citations."),
			mcp.WithString("question", mcp.Description("The question to answer"), mcp.Required()),
		),
		mcpAsk(deps),
	)

	s.AddTool(
		mcp.NewTool("ingest_document",
			mcp.WithDescription("Ingest a PDF, text, or markdown file from the local filesystem into the knowledge base."),
			mcp.WithString("path", mcp.Description("Absolute path to the file"), mcp.Required()),
			mcp.WithString("title", mcp.Description("Optional custom title for the document")),
		),
		mcpIngestDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List all ingested documents with their chunk counts."),
		),
		mcpListDocuments(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_document",
			mcp.WithDescription("Delete a document and its chunks and vectors from the knowledge base."),
			mcp.WithNumber("document_id", mcp.Description("Numeric id of the document to delete"), mcp.Required()),
		),
		mcpDeleteDocument(deps),
	)

	return s
}

func mcpAsk(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		result, err := deps.Answer.Query(ctx, question)
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}

		payload := map[string]any{
			"state":     result.State,
			"answer":    result.Answer,
			"citations": result.Citations,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpIngestDocument(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcpError("path is required"), nil
		}

		title := req.GetString("title", "")

		result, err := deps.Pipeline.Ingest(ctx, path, ingest.Options{CustomTitle: title})
		if err != nil {
			if code := ingest.CodeOf(err); code != "" {
				return mcpError(fmt.Sprintf("%s: %v", code, err)), nil
			}
			return mcpError(fmt.Sprintf("ingestion failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListDocuments(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := deps.Store.ListDocuments()
		if err != nil {
			return mcpError(fmt.Sprintf("listing documents failed: %v", err)), nil
		}

		type documentSummary struct {
			ID         int64  `json:"id"`
			Title      string `json:"title"`
			ChunkCount int    `json:"chunk_count"`
		}
		summaries := make([]documentSummary, len(docs))
		for i, d := range docs {
			summaries[i] = documentSummary{ID: d.ID, Title: d.Title, ChunkCount: d.ChunkCount}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal documents: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDeleteDocument(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetInt("document_id", 0)
		if id <= 0 {
			return mcpError("document_id is required"), nil
		}

		result, err := deps.Pipeline.Delete(ctx, int64(id))
		if err != nil {
			if code := ingest.CodeOf(err); code != "" {
				return mcpError(fmt.Sprintf("%s: %v", code, err)), nil
			}
			return mcpError(fmt.Sprintf("deletion failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
