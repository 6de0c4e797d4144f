// Package mcp exposes the Steve backend to AI agent clients as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	mcp "github.com/fredcamaral/gomcp-sdk"
	"github.com/fredcamaral/gomcp-sdk/server"

	"steve-mcp/internal/auth"
	"steve-mcp/internal/config"
	"steve-mcp/internal/logging"
	"steve-mcp/internal/reader"
	"steve-mcp/internal/steveapi"
	"steve-mcp/internal/store"
)

const (
	serverName    = "steve-mcp"
	serverVersion = "1.0.0"

	// defaultProductLimit bounds workspace product listings, matching the
	// backend's default page size
	defaultProductLimit = 10
)

// BackendAPI is the slice of the upstream client the tool handlers use
type BackendAPI interface {
	GetCurrentUser(ctx context.Context, authHeader string) (*steveapi.User, error)
	CreateTask(ctx context.Context, authHeader string, input *steveapi.TaskCreateInput) (*steveapi.Task, error)
	ListProductTasks(ctx context.Context, authHeader, productID string, query *steveapi.TaskQuery) ([]steveapi.Task, error)
}

// ProductLister answers workspace product reads (the dual-path reader)
type ProductLister interface {
	Products(ctx context.Context, authHeader, workspaceID string, limit int) ([]steveapi.Product, error)
}

// SteveServer wires the tool handlers to their dependencies. All fields are
// immutable after construction; handlers share no per-request state.
type SteveServer struct {
	cfg       *config.Config
	resolver  *auth.Resolver
	api       BackendAPI
	apiClient *steveapi.Client // concrete client behind api; used by the health probe
	products  ProductLister
	mirror    *store.MongoMirror // nil when unconfigured; kept for shutdown
	logger    logging.Logger
	mcpServer *server.Server
	now       func() time.Time
}

// NewServer constructs the MCP server and its dependency graph from config.
// The mirror connection is optional: without MONGODB_URL all reads go to the
// API directly.
func NewServer(ctx context.Context, cfg *config.Config) (*SteveServer, error) {
	logger := logging.WithComponent("mcp")

	apiClient := steveapi.NewClient(
		cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
		logging.WithComponent("steveapi"),
	)

	var mirror *store.MongoMirror
	if cfg.MirrorConfigured() {
		var err error
		mirror, err = store.Connect(ctx, cfg.Mongo, logging.WithComponent("store"))
		if err != nil {
			// A dead mirror is a degraded state, not a startup failure:
			// the reader falls back to the API for every query.
			logger.Warn("mirror connection failed, reads will use the API only", "error", err)
			mirror = nil
		} else {
			logger.Info("connected to MongoDB mirror", "database", cfg.Mongo.Database)
		}
	} else {
		logger.Info("no MongoDB mirror configured, reads will use the API only")
	}

	srv := &SteveServer{
		cfg:       cfg,
		resolver:  auth.NewResolver(cfg.Debug, cfg.API.Token),
		api:       apiClient,
		apiClient: apiClient,
		mirror:    mirror,
		logger:    logger,
		now:       time.Now,
	}
	srv.products = reader.NewProductReader(mirrorOrNil(mirror), apiClient, logging.WithComponent("reader"))

	mcpServer := mcp.NewServer(serverName, serverVersion)
	if mcpServer == nil {
		return nil, errors.New("failed to create MCP server instance")
	}
	srv.mcpServer = mcpServer
	srv.registerTools()

	logger.Info("MCP server created", "tools", 4)
	return srv, nil
}

// mirrorOrNil converts a typed nil into an untyped nil interface so the
// reader's nil check works.
func mirrorOrNil(m *store.MongoMirror) reader.ProductMirror {
	if m == nil {
		return nil
	}
	return m
}

// MCPServer returns the underlying protocol server for transport binding
func (s *SteveServer) MCPServer() *server.Server {
	return s.mcpServer
}

// APIClient returns the backend API client for the health probe
func (s *SteveServer) APIClient() *steveapi.Client {
	return s.apiClient
}

// Mirror returns the mirror handle, or nil when unconfigured
func (s *SteveServer) Mirror() *store.MongoMirror {
	return s.mirror
}

// Close releases the mirror connection
func (s *SteveServer) Close(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	if err := s.mirror.Close(ctx); err != nil {
		return fmt.Errorf("closing mirror connection: %w", err)
	}
	return nil
}
