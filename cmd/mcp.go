package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"filedex/internal/query"
	"filedex/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultSearchLimit = 50

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing index search tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	s := newMCPServer(cfg.IndexPath, log)
	return mcpserver.ServeStdio(s)
}

func newMCPServer(indexPath string, log zerolog.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("filedex", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(lookupFilesTool(), makeLookupHandler(indexPath, log))
	s.AddTool(searchIndexTool(), makeSearchHandler(indexPath))
	s.AddTool(indexSummaryTool(), makeSummaryHandler(indexPath))
	return s
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func lookupFilesTool() mcp.Tool {
	return mcp.NewTool("lookup_files",
		mcp.WithDescription("List the names of indexed files whose name contains the query, ignoring case. Returns an empty list when the index is missing or unreadable."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to look for in file names"),
		),
	)
}

func searchIndexTool() mcp.Tool {
	return mcp.NewTool("search_index",
		mcp.WithDescription("Search the file index. A row matches when the query appears, ignoring case, in any selected column: name, formatted size (e.g. '1.00 MB') or content type."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to search for"),
		),
		mcp.WithString("columns",
			mcp.Description("Comma separated columns to match: name, size, type (default all)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows to return (default 50)"),
		),
	)
}

func indexSummaryTool() mcp.Tool {
	return mcp.NewTool("index_summary",
		mcp.WithDescription("Describe the index: row count, total size, codec and the most common content types."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeLookupHandler(indexPath string, log zerolog.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := req.GetString("query", "")
		names := query.LookupNames(indexPath, q, log)
		if len(names) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No files found for query: %q", q)), nil
		}
		return mcp.NewToolResultText(strings.Join(names, "\n")), nil
	}
}

func makeSearchHandler(indexPath string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := req.GetString("query", "")
		cols := query.AllColumns
		if list := req.GetString("columns", ""); list != "" {
			c, err := query.ParseColumns(list)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			cols = c
		}
		limit := req.GetInt("limit", defaultSearchLimit)
		if limit <= 0 {
			limit = defaultSearchLimit
		}

		session, err := query.Load(indexPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load index failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatSearchResults(q, cols, session.Search(q, cols), limit)), nil
	}
}

func makeSummaryHandler(indexPath string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		h, err := store.Inspect(indexPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect index failed: %v", err)), nil
		}
		records, err := store.Read(indexPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read index failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatSummary(indexPath, h, records)), nil
	}
}

// --- Formatting helpers ---

func formatSearchResults(q string, cols query.Column, rows []query.Row, limit int) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No results found for query: %q (columns: %s)", q, cols)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d rows, columns: %s)\n\n", q, len(rows), cols)
	sb.WriteString("| File Name | File Size | Content Type |\n|---|---|---|\n")
	for i, r := range rows {
		if i == limit {
			fmt.Fprintf(&sb, "\n... %d more rows not shown\n", len(rows)-limit)
			break
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", r.Name, r.Size, r.ContentType)
	}
	return sb.String()
}

func formatSummary(indexPath string, h *store.Header, records []store.FileRecord) string {
	var total uint64
	types := map[string]int{}
	for _, r := range records {
		total += r.SizeBytes
		t, ok := r.Type()
		if !ok {
			t = query.NoContentType
		}
		types[t]++
	}

	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if types[keys[i]] != types[keys[j]] {
			return types[keys[i]] > types[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > 10 {
		keys = keys[:10]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Index `%s`\n\n", indexPath)
	fmt.Fprintf(&sb, "**Files:** %d  \n**Total size:** %s  \n**Codec:** %s\n\n", h.Rows, query.FormatSize(total), h.Codec)
	if len(keys) > 0 {
		sb.WriteString("### Content types\n\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %d\n", k, types[k])
		}
	}
	return sb.String()
}
