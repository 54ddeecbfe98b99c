package handout_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/handoutbot/internal/handout"
	"github.com/teemow/handoutbot/internal/instrumentation"
	"github.com/teemow/handoutbot/internal/tools/common"
)

const (
	toolSearch    = "handout_search"
	toolSemesters = "handout_semesters"
)

// Searcher is the part of handout.Searcher the tools need.
type Searcher interface {
	HandleSearch(ctx context.Context, term string, conv handout.Conversation) error
	Semesters() []handout.Semester
}

// RegisterHandoutTools registers the handout tools with the MCP server.
func RegisterHandoutTools(s *mcpserver.MCPServer, searcher Searcher, metrics *instrumentation.Metrics) error {
	if searcher == nil {
		return fmt.Errorf("searcher is required")
	}

	searchTool := mcp.NewTool(toolSearch,
		mcp.WithDescription("Search the handout drive by course code or course name. Returns the messages the Telegram bot would reply with."),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Course code (preferred) or course name, e.g. 'CS F111'"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler(toolSearch, metrics, searchHandler(searcher)))

	semestersTool := mcp.NewTool(toolSemesters,
		mcp.WithDescription("List the semesters, newest first, under which multi-result searches are grouped"),
	)
	s.AddTool(semestersTool, common.InstrumentedToolHandler(toolSemesters, metrics, semestersHandler(searcher)))

	return nil
}

func searchHandler(searcher Searcher) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, err := request.RequireString("term")
		if err != nil || term == "" {
			return mcp.NewToolResultError("term is required"), nil
		}

		transcript := handout.NewTranscript()
		if err := searcher.HandleSearch(ctx, term, transcript); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s\n\n%v", transcript.String(), err)), nil
		}
		return mcp.NewToolResultText(transcript.String()), nil
	}
}

func semestersHandler(searcher Searcher) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := json.MarshalIndent(searcher.Semesters(), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode semesters: %v", err)), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}
