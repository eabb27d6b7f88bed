package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StepResponse is the structured result of next_step.
type StepResponse struct {
	Navigate   string  `json:"navigate" jsonschema_description:"Label of the edge to perform"`
	Verify     string  `json:"verify" jsonschema_description:"Label of the state to assert afterwards"`
	State      string  `json:"state" jsonschema_description:"Current state after the step"`
	Fulfilment float64 `json:"fulfilment" jsonschema_description:"Progress of the stop condition between 0 and 1"`
}

// HasNextResponse is the structured result of has_next.
type HasNextResponse struct {
	HasNext bool `json:"has_next" jsonschema_description:"Whether another step can be generated"`
}

// DataArgs are the arguments of data_value.
type DataArgs struct {
	Name string `json:"name"`
}

// StatisticsArgs are the arguments of statistics.
type StatisticsArgs struct {
	Format string `json:"format"`
}

// Server exposes a generation session as MCP tools, so an agent can drive the
// system under test one generated step at a time.
type Server struct {
	session   ports.Session
	mcpServer *server.MCPServer
	mu        sync.Mutex
	logger    *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server for session.
func NewServer(session ports.Session, version string, opts ...Option) *Server {
	s := &Server{
		session:   session,
		mcpServer: server.NewMCPServer("mbt-mcp", version),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over server-sent events on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

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
	s.mcpServer.AddTool(mcp.NewTool("has_next",
		mcp.WithDescription("Report whether the generator can produce another test step."),
		mcp.WithOutputSchema[HasNextResponse](),
	), mcp.NewStructuredToolHandler(s.handleHasNext))

	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Generate the next test step: perform 'navigate' on the system under test, then check 'verify'."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleNextStep))

	s.mcpServer.AddTool(mcp.NewTool("backtrack",
		mcp.WithDescription("Undo the last generated step, if backtracking is enabled."),
	), s.handleBacktrack)

	s.mcpServer.AddTool(mcp.NewTool("current_state",
		mcp.WithDescription("Get the label of the current state of the model."),
	), s.handleCurrentState)

	s.mcpServer.AddTool(mcp.NewTool("data_value",
		mcp.WithDescription("Read a variable of the extended machine's data space."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Variable name")),
	), mcp.NewTypedToolHandler(s.handleDataValue))

	s.mcpServer.AddTool(mcp.NewTool("statistics",
		mcp.WithDescription("Get the coverage statistics of the generated sequence."),
		mcp.WithString("format", mcp.Description("compact, default or verbose"), mcp.Enum("compact", "default", "verbose")),
	), mcp.NewTypedToolHandler(s.handleStatistics))
}

func (s *Server) handleHasNext(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (HasNextResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.session.HasNextStep()
	if err != nil {
		return HasNextResponse{}, fmt.Errorf("has_next failed: %w", err)
	}
	return HasNextResponse{HasNext: ok}, nil
}

func (s *Server) handleNextStep(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StepResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, err := s.session.NextStep()
	if err != nil {
		s.logger.Warn("MCP next_step failed", "error", err)
		return StepResponse{}, fmt.Errorf("next_step failed: %w", err)
	}
	return StepResponse{
		Navigate:   step.Navigate,
		Verify:     step.Verify,
		State:      s.session.CurrentState(),
		Fulfilment: s.session.Fulfilment(),
	}, nil
}

func (s *Server) handleBacktrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.Backtrack() {
		return mcp.NewToolResultError("nothing to backtrack"), nil
	}
	return mcp.NewToolResultText(s.session.CurrentState()), nil
}

func (s *Server) handleCurrentState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mcp.NewToolResultText(s.session.CurrentState()), nil
}

func (s *Server) handleDataValue(ctx context.Context, request mcp.CallToolRequest, args DataArgs) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, err := s.session.DataValue(args.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownVariable) || errors.Is(err, domain.ErrNotExtended) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return mcp.NewToolResultText(value), nil
}

func (s *Server) statistics(format string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch format {
	case "compact":
		return s.session.StatisticsCompact(), nil
	case "verbose":
		return s.session.StatisticsVerbose(), nil
	case "", "default":
		return s.session.StatisticsString(), nil
	}
	return "", fmt.Errorf("unknown format %q", format)
}

func (s *Server) handleStatistics(ctx context.Context, request mcp.CallToolRequest, args StatisticsArgs) (*mcp.CallToolResult, error) {
	text, err := s.statistics(args.Format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("mbt://statistics", "Coverage Statistics",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.statistics("verbose")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "mbt://statistics",
				MIMEType: "text/plain",
				Text:     text,
			},
		}, nil
	})
}
