// Package mcp serves refscope's definition and reference lookups as MCP
// tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/phobologic/refscope/internal/config"
	"github.com/phobologic/refscope/internal/usage"
	"github.com/phobologic/refscope/internal/workspace"
)

// Server owns the workspace behind the tools. The workspace is reloaded
// before a request when files changed since it was built.
type Server struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	mcp    *server.MCPServer

	mu  sync.Mutex
	ws  *workspace.Workspace
	svc *usage.Service
}

// NewServer loads the workspace at root and registers the tools.
func NewServer(ctx context.Context, root string, cfg *config.Config, logger *slog.Logger, version string) (*Server, error) {
	s := &Server{root: root, cfg: cfg, logger: logger}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}

	s.mcp = server.NewMCPServer(
		"refscope",
		version,
		server.WithToolCapabilities(true),
	)
	AddDefinitionTool(s.mcp, s)
	AddReferencesTool(s.mcp, s)
	return s, nil
}

func (s *Server) reload(ctx context.Context) error {
	ws, err := workspace.Load(ctx, s.root, s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("loading workspace: %w", err)
	}
	svc, err := usage.NewService(ws, s.cfg, s.logger)
	if err != nil {
		return err
	}
	s.ws, s.svc = ws, svc
	return nil
}

// Service returns the usage service for the current state of the files.
func (s *Server) Service(ctx context.Context) (*usage.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws.Stale(ctx) {
		s.logger.Info("workspace changed, reloading", "root", s.root)
		if err := s.reload(ctx); err != nil {
			return nil, err
		}
	}
	return s.svc, nil
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve runs the server on stdio until the input closes, ctx is done or
// the process is interrupted.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP on stdio", "root", s.root)
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
