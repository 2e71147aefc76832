package server

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/ingestion"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Engine is the slice of the document service the tools need.
type Engine interface {
	SearchFormatted(ctx context.Context, topic core.Topic, query string) (string, error)
	Ingest(ctx context.Context, topic core.Topic, fileName string, data []byte, accessLabels ...string) (*ingestion.Result, error)
	Topics() []core.Topic
}

// Server exposes document search and ingestion as MCP tools.
type Server struct {
	engine Engine
	server *mcp.Server
}

// NewServer creates a new MCP server backed by the engine.
func NewServer(engine Engine) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}

	impl := &mcp.Implementation{
		Name:    "docdex",
		Version: Version,
	}

	s := &Server{
		engine: engine,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
