package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/client"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/selection"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Session defines what the MCP server needs from a weft session.
type Session interface {
	Nodes() *selection.Registry
	Select(id string) (*domain.Node, error)
	Selected() (*domain.Node, bool)
	Client() *client.Client
}

// Server exposes a weft session as an MCP server.
type Server struct {
	session   Session
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(session Session, opts ...Option) *Server {
	s := &Server{
		session:   session,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("weft-mcp", strings.TrimSpace(weft.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("compile_line",
		mcp.WithDescription("Compile and run a single line of code on the backend."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Source line")),
	), s.handleCompileLine)

	s.mcpServer.AddTool(mcp.NewTool("compile",
		mcp.WithDescription("Translate a whole program to python, c or javascript."),
		mcp.WithString("language", mcp.Required(), mcp.Description("Target language: python, c or javascript")),
		mcp.WithString("code", mcp.Required(), mcp.Description("Program source")),
	), s.handleCompile)

	s.mcpServer.AddTool(mcp.NewTool("execute",
		mcp.WithDescription("Run the backend pipeline with the given input."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Input as JSON; a bare string is sent as-is")),
	), s.handleExecute)

	s.mcpServer.AddTool(mcp.NewTool("process_node",
		mcp.WithDescription("Process a node. Uses the registered node with node_id, the selected node, or an inline node."),
		mcp.WithString("node_id", mcp.Description("ID of a registered node")),
		mcp.WithString("node", mcp.Description("Inline node as a JSON object {id, type, parameters}")),
	), s.handleProcessNode)

	s.mcpServer.AddTool(mcp.NewTool("select_node",
		mcp.WithDescription("Mark a registered node as the selected one."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("ID of a registered node")),
	), s.handleSelectNode)

	s.mcpServer.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List registered nodes."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.session.Nodes().List())
	})
}

func (s *Server) handleCompileLine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.session.Client().CompileLine(ctx, code)
	if err != nil {
		return s.toolError("compile_line", err), nil
	}
	return mcp.NewToolResultText(res.Output), nil
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lang, err := request.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.session.Client().Compile(ctx, lang, code)
	if err != nil {
		return s.toolError("compile", err), nil
	}
	return mcp.NewToolResultText(res.Code), nil
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var data any = raw
	var parsed any
	if json.Unmarshal([]byte(raw), &parsed) == nil {
		data = parsed
	}
	res, err := s.session.Client().Execute(ctx, data)
	if err != nil {
		return s.toolError("execute", err), nil
	}
	return mcp.NewToolResultText(domain.FormatValue(res.Data)), nil
}

func (s *Server) handleProcessNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var node any
	switch id, inline := request.GetString("node_id", ""), request.GetString("node", ""); {
	case id != "":
		n, err := s.session.Nodes().Lookup(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		node = n
	case inline != "":
		var obj map[string]any
		if err := json.Unmarshal([]byte(inline), &obj); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("node must be a JSON object: %v", err)), nil
		}
		node = obj
	default:
		n, ok := s.session.Selected()
		if !ok {
			return mcp.NewToolResultError(domain.ErrNoSelection.Error()), nil
		}
		node = n
	}

	res, err := s.session.Client().ProcessNode(ctx, node)
	if err != nil {
		return s.toolError("process_node", err), nil
	}
	return mcp.NewToolResultText(domain.FormatValue(res.Result)), nil
}

func (s *Server) handleSelectNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.session.Select(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(n)
}

// toolError reports application errors verbatim and everything else with
// its kind, since a tool call must always produce a result.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if msg, ok := domain.ApplicationMessage(err); ok {
		return mcp.NewToolResultError(msg)
	}
	s.logger.Error("MCP tool failed", "tool", tool, "kind", domain.KindOf(err), "error", err)
	var de *domain.DispatchError
	if errors.As(err, &de) {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed (%s)", tool, de.Kind))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("weft://nodes", "Registered nodes",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(s.session.Nodes().List())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "weft://nodes",
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}
