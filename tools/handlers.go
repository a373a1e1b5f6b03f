package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/fandom-bot-mcp-server/discussions"
	"github.com/olgasafonova/fandom-bot-mcp-server/metrics"
	"github.com/olgasafonova/fandom-bot-mcp-server/tracing"
	"github.com/olgasafonova/fandom-bot-mcp-server/wiki"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	wikiClient        *wiki.Client
	discussionsClient *discussions.Client
	logger            *slog.Logger
}

// NewHandlerRegistry creates a new handler registry. The discussions
// client may be nil when no discussion site is configured.
func NewHandlerRegistry(wikiClient *wiki.Client, discussionsClient *discussions.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		wikiClient:        wikiClient,
		discussionsClient: discussionsClient,
		logger:            logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	count := 0
	for _, spec := range AllWikiTools() {
		h.registerByName(server, spec)
		count++
	}
	if h.discussionsClient != nil {
		for _, spec := range DiscussionTools {
			h.registerByName(server, spec)
			count++
		}
	}
	h.logger.Info("Registered all tools", "count", count)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	// Read tools
	case "Search":
		register(h, server, tool, spec, h.wikiClient.Search)
	case "GetPage":
		register(h, server, tool, spec, h.wikiClient.GetPage)
	case "GetCategoryMembers":
		register(h, server, tool, spec, h.wikiClient.GetCategoryMembers)
	case "GetUserContributions":
		register(h, server, tool, spec, h.wikiClient.GetUserContributions)
	case "GetBacklinks":
		register(h, server, tool, spec, h.wikiClient.GetBacklinks)
	case "GetImages":
		register(h, server, tool, spec, h.wikiClient.GetImages)
	case "GetExternalLinks":
		register(h, server, tool, spec, h.wikiClient.GetExternalLinks)

	// Write tools
	case "EditPage":
		register(h, server, tool, spec, h.wikiClient.EditPage)
	case "Prepend":
		register(h, server, tool, spec, h.wikiClient.Prepend)
	case "Append":
		register(h, server, tool, spec, h.wikiClient.Append)
	case "Undo":
		register(h, server, tool, spec, h.wikiClient.Undo)
	case "Purge":
		register(h, server, tool, spec, h.wikiClient.Purge)

	// Admin tools
	case "DeletePage":
		register(h, server, tool, spec, h.wikiClient.DeletePage)
	case "Undelete":
		register(h, server, tool, spec, h.wikiClient.Undelete)
	case "Protect":
		register(h, server, tool, spec, h.wikiClient.Protect)
	case "Move":
		register(h, server, tool, spec, h.wikiClient.Move)
	case "Block":
		register(h, server, tool, spec, h.wikiClient.Block)
	case "Unblock":
		register(h, server, tool, spec, h.wikiClient.Unblock)
	case "EmailUser":
		register(h, server, tool, spec, h.wikiClient.EmailUser)
	case "CreateAccount":
		register(h, server, tool, spec, h.wikiClient.CreateAccount)

	// Discussion tools
	case "CreatePost":
		register(h, server, tool, spec, h.discussionsClient.CreatePost)
	case "DeletePost":
		register(h, server, tool, spec, func(ctx context.Context, args discussions.ThreadArgs) (discussions.ThreadResponse, error) {
			return h.discussionsClient.DeletePost(ctx, args.ThreadID)
		})
	case "UndeletePost":
		register(h, server, tool, spec, func(ctx context.Context, args discussions.ThreadArgs) (discussions.ThreadResponse, error) {
			return h.discussionsClient.UndeletePost(ctx, args.ThreadID)
		})
	case "LockPost":
		register(h, server, tool, spec, func(ctx context.Context, args discussions.ThreadArgs) (discussions.ThreadResponse, error) {
			return h.discussionsClient.LockPost(ctx, args.ThreadID)
		})
	case "UnlockPost":
		register(h, server, tool, spec, func(ctx context.Context, args discussions.ThreadArgs) (discussions.ThreadResponse, error) {
			return h.discussionsClient.UnlockPost(ctx, args.ThreadID)
		})

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
		OpenWorldHint:  ptr(true),
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		defer h.recoverPanic(spec.Name)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			tracing.RecordError(span, err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			if !spec.ReadOnly {
				metrics.RecordEdit(spec.Name, false)
			}
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		if !spec.ReadOnly {
			metrics.RecordEdit(spec.Name, true)
		}
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers.
func (h *HandlerRegistry) recoverPanic(toolName string) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case wiki.SearchArgs:
		attrs = append(attrs, "query", a.Query)
	case wiki.GetPageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.CategoryMembersArgs:
		attrs = append(attrs, "category", a.Category)
	case wiki.UserContributionsArgs:
		attrs = append(attrs, "user", a.User)
	case wiki.BacklinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.ImagesArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.ExternalLinksArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.EditPageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.PrependArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.AppendArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.UndoArgs:
		attrs = append(attrs, "title", a.Title, "revision_id", a.RevisionID)
	case wiki.PurgeArgs:
		attrs = append(attrs, "titles", len(a.Titles), "page_ids", len(a.PageIDs))
	case wiki.DeletePageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.UndeleteArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.ProtectArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.MoveArgs:
		attrs = append(attrs, "from", a.From, "to", a.To)
	case wiki.BlockArgs:
		attrs = append(attrs, "user", a.User, "expiry", a.Expiry)
	case wiki.UnblockArgs:
		attrs = append(attrs, "user", a.User)
	case wiki.EmailArgs:
		attrs = append(attrs, "target", a.Target)
	case wiki.CreateAccountArgs:
		attrs = append(attrs, "username", a.Username)
	case discussions.CreatePostArgs:
		attrs = append(attrs, "forum_id", a.ForumID, "title", a.Title)
	case discussions.ThreadArgs:
		attrs = append(attrs, "thread_id", a.ThreadID)
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case wiki.SearchResult:
		attrs = append(attrs, "results_count", len(r.Results), "total_hits", r.TotalHits)
	case wiki.PageContent:
		attrs = append(attrs, "missing", r.Missing)
	case wiki.CategoryMembersResult:
		attrs = append(attrs, "members", len(r.Members))
	case wiki.UserContributionsResult:
		attrs = append(attrs, "contributions", len(r.Contributions))
	case wiki.BacklinksResult:
		attrs = append(attrs, "backlinks", len(r.Backlinks))
	case wiki.ImagesResult:
		attrs = append(attrs, "images", len(r.Images))
	case wiki.ExternalLinksResult:
		attrs = append(attrs, "links", len(r.Links))
	case wiki.EditResult:
		attrs = append(attrs, "revision_id", r.RevisionID, "new_page", r.NewPage)
	case wiki.PurgeResult:
		attrs = append(attrs, "purged", len(r.Purged))
	case wiki.MoveResult:
		attrs = append(attrs, "moved_to", r.To)
	case discussions.ThreadResponse:
		attrs = append(attrs, "thread_id", r.ThreadID())
	}

	h.logger.Info("Tool executed", attrs...)
}
