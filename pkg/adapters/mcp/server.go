// Package mcp exposes a controller registry as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/nody"
	"github.com/aretw0/nody/internal/logging"
	presentation "github.com/aretw0/nody/internal/presentation/graph"
	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ListResponse is the result of list_controllers.
type ListResponse struct {
	Controllers []controller.Status `json:"controllers" jsonschema_description:"Snapshot of every registered controller"`
}

// Server wraps a controller registry and exposes it as an MCP Server.
type Server struct {
	registry  *controller.Registry
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance. A nil logger discards output.
func NewServer(registry *controller.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		registry:  registry,
		logger:    logger,
		mcpServer: server.NewMCPServer("nody-mcp", strings.TrimSpace(nody.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_controllers
	s.mcpServer.AddTool(mcp.NewTool("list_controllers",
		mcp.WithDescription("List every registered graph controller with its active path."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: controller_status
	s.mcpServer.AddTool(mcp.NewTool("controller_status",
		mcp.WithDescription("Get the status of one controller: enabled flag, active path and global nodes."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Controller name")),
		mcp.WithOutputSchema[controller.Status](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	// TOOL: goto_node
	s.mcpServer.AddTool(mcp.NewTool("goto_node",
		mcp.WithDescription("Force-activate a node of the controller's graph by id or name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Controller name")),
		mcp.WithString("node_id", mcp.Description("Node id (takes precedence over node_name)")),
		mcp.WithString("node_name", mcp.Description("Node name")),
		mcp.WithOutputSchema[controller.Status](),
	), mcp.NewStructuredToolHandler(s.handleGoTo))

	// TOOL: tick
	s.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Advance the controller by one frame. The first tick activates the entry node."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Controller name")),
		mcp.WithNumber("dt_ms", mcp.Description("Frame delta in milliseconds (default 0)")),
		mcp.WithBoolean("fixed", mcp.Description("Run a fixed-step update instead of a full tick")),
		mcp.WithOutputSchema[controller.Status](),
	), mcp.NewStructuredToolHandler(s.handleTick))

	// TOOL: advance
	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Continue from the innermost active node through one of its outputs."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Controller name")),
		mcp.WithNumber("output", mcp.Description("Output socket index (default 0)")),
		mcp.WithOutputSchema[controller.Status](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the controller's graph as a Mermaid flowchart with the live path highlighted."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Controller name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("name", "")
		out, err := s.mermaid(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ListResponse, error) {
	resp := ListResponse{Controllers: []controller.Status{}}
	for _, c := range s.registry.List() {
		resp.Controllers = append(resp.Controllers, c.Status())
	}
	return resp, nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (controller.Status, error) {
	c, err := s.lookup(args)
	if err != nil {
		return controller.Status{}, err
	}
	return c.Status(), nil
}

func (s *Server) handleGoTo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (controller.Status, error) {
	c, err := s.lookup(args)
	if err != nil {
		return controller.Status{}, err
	}
	id, _ := args["node_id"].(string)
	name, _ := args["node_name"].(string)
	switch {
	case id != "":
		err = c.GoToNodeByID(id)
	case name != "":
		err = c.GoToNodeByName(name)
	default:
		return controller.Status{}, fmt.Errorf("node_id or node_name is required")
	}
	if err != nil {
		s.logger.Warn("MCP goto_node failed", "controller", c.Name(), "error", err)
		return controller.Status{}, fmt.Errorf("goto failed: %w", err)
	}
	return c.Status(), nil
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (controller.Status, error) {
	c, err := s.lookup(args)
	if err != nil {
		return controller.Status{}, err
	}
	dt := time.Duration(number(args["dt_ms"])) * time.Millisecond
	if fixed, _ := args["fixed"].(bool); fixed {
		err = c.FixedUpdate(dt)
	} else {
		err = c.Tick(dt)
	}
	if err != nil {
		s.logger.Error("MCP tick failed", "controller", c.Name(), "error", err)
		return controller.Status{}, fmt.Errorf("tick failed: %w", err)
	}
	return c.Status(), nil
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (controller.Status, error) {
	c, err := s.lookup(args)
	if err != nil {
		return controller.Status{}, err
	}
	if err := c.Advance(int(number(args["output"]))); err != nil {
		return controller.Status{}, fmt.Errorf("advance failed: %w", err)
	}
	return c.Status(), nil
}

func (s *Server) lookup(args map[string]interface{}) (*controller.Controller, error) {
	name, _ := args["name"].(string)
	c, ok := s.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("controller %q not found", name)
	}
	return c, nil
}

func (s *Server) mermaid(name string) (string, error) {
	c, ok := s.registry.Lookup(name)
	if !ok {
		return "", fmt.Errorf("controller %q not found", name)
	}
	var out string
	c.Inspect(func(g *graph.Graph) {
		if g != nil {
			out = presentation.GenerateMermaid(g, presentation.OverlayFromGraph(g))
		}
	})
	if out == "" {
		return "", fmt.Errorf("controller %q has no graph", name)
	}
	return out, nil
}

// number reads a JSON number argument; absent or malformed values are 0.
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func (s *Server) registerResources() {
	// EXPOSE: nody://controllers
	s.mcpServer.AddResource(mcp.NewResource("nody://controllers", "Registered Controllers",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, _ := s.handleList(ctx, mcp.CallToolRequest{}, nil)
		jsonBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to encode controllers: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "nody://controllers",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
