package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/pkg/adapters/file"
	"github.com/aretw0/inicheck/pkg/adapters/memory"
	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const schemaURI = "inicheck://schema"

// CheckArgs are the arguments of the check_config tool.
type CheckArgs struct {
	Config string `json:"config"`
	Format string `json:"format,omitempty"`
	Dir    string `json:"dir,omitempty"`
}

// DescribeArgs are the arguments of the describe_item tool.
type DescribeArgs struct {
	Section string `json:"section"`
	Item    string `json:"item"`
}

// ItemDescription is the schema entry of one item.
type ItemDescription struct {
	Section     string   `json:"section" jsonschema_description:"Section name"`
	Item        string   `json:"item" jsonschema_description:"Item name"`
	Type        string   `json:"type" jsonschema_description:"Declared type"`
	List        bool     `json:"list" jsonschema_description:"Whether the item may hold a sequence"`
	Default     any      `json:"default,omitempty" jsonschema_description:"Declared default"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Options     []any    `json:"options,omitempty" jsonschema_description:"Allowed values"`
	Pair        string   `json:"pair,omitempty" jsonschema_description:"Partner item of an ordered pair"`
	Role        string   `json:"role,omitempty" jsonschema_description:"start or end"`
	Description string   `json:"description,omitempty"`
}

// Server exposes a master schema as an MCP server.
type Server struct {
	master    *schema.Master
	logger    *slog.Logger
	hooks     checkers.Hooks
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHooks attaches checker hooks to every pass the server runs.
func WithHooks(hooks checkers.Hooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(master *schema.Master, opts ...Option) *Server {
	s := &Server{
		master:    master,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("inicheck-mcp", strings.TrimSpace(inicheck.Version)),
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

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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
	checkTool := mcp.NewTool("check_config",
		mcp.WithDescription("Validate a configuration against the master schema and return the normalized values."),
		mcp.WithString("config", mcp.Required(), mcp.Description("Configuration text, section to item to value")),
		mcp.WithString("format", mcp.Description("Format of config: json (default), yaml, toml, ini or hcl")),
		mcp.WithString("dir", mcp.Description("Directory relative paths resolve against")),
		mcp.WithOutputSchema[inicheck.Summary](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheckConfig))

	describeTool := mcp.NewTool("describe_item",
		mcp.WithDescription("Describe the schema entry of one configuration item."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithString("item", mcp.Required(), mcp.Description("Item name")),
		mcp.WithOutputSchema[ItemDescription](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribeItem))
}

func (s *Server) handleCheckConfig(ctx context.Context, request mcp.CallToolRequest, args CheckArgs) (inicheck.Summary, error) {
	format := file.FormatJSON
	if args.Format != "" {
		format = file.Format(strings.ToLower(args.Format))
	}

	sections, err := file.Parse([]byte(args.Config), format, "config")
	if err != nil {
		s.logger.Warn("MCP check_config: invalid configuration", "err", err)
		return inicheck.Summary{}, fmt.Errorf("invalid configuration: %w", err)
	}

	sess, err := inicheck.New(s.master, memory.NewStore(args.Dir, sections...),
		inicheck.WithLogger(s.logger),
		inicheck.WithHooks(s.hooks),
	)
	if err != nil {
		return inicheck.Summary{}, err
	}

	report, err := sess.Check(ctx)
	if err != nil {
		return inicheck.Summary{}, fmt.Errorf("check failed: %w", err)
	}
	return report.Summary(), nil
}

func (s *Server) handleDescribeItem(ctx context.Context, request mcp.CallToolRequest, args DescribeArgs) (ItemDescription, error) {
	entry, err := s.master.Lookup(args.Section, args.Item)
	if err != nil {
		return ItemDescription{}, err
	}
	return ItemDescription{
		Section:     entry.Section,
		Item:        entry.Item,
		Type:        entry.Type.Name(),
		List:        entry.List,
		Default:     entry.Default,
		Min:         entry.Min,
		Max:         entry.Max,
		Options:     entry.Options,
		Pair:        entry.Pair,
		Role:        string(entry.Role),
		Description: entry.Description,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(schemaURI, "Master Schema",
		mcp.WithMIMEType("application/json"),
	), s.readSchema)
}

func (s *Server) readSchema(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.master)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
