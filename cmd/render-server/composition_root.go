package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"go-remote-handlebars/internal/compiler/handlebars"
	"go-remote-handlebars/internal/config"
	"go-remote-handlebars/internal/filesystem"
	"go-remote-handlebars/internal/httpserver"
	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/models"
	"go-remote-handlebars/internal/render"
	"go-remote-handlebars/internal/transport"
)

// CompositionRoot holds all application dependencies and wires them in one place.
//
// Initialization order:
// 1. Bootstrap logger (needed to report config loading)
// 2. Configuration
// 3. Logger at the configured level
// 4. Collaborators (transport, filesystem, compiler)
// 5. Render engine with its stores
// 6. HTTP server
type CompositionRoot struct {
	Config *config.Config
	Logger *zap.Logger

	Transport  interfaces.Transport
	FileSystem interfaces.FileSystem
	Compiler   interfaces.Compiler

	Engine     *render.Engine
	HTTPServer *httpserver.Server
}

// NewCompositionRoot creates and initializes all application dependencies
func NewCompositionRoot() (*CompositionRoot, error) {
	root := &CompositionRoot{}

	bootstrap, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	root.Logger = bootstrap

	if err := root.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := root.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	_ = bootstrap.Sync()

	root.initCollaborators()
	root.initEngine()
	root.initHTTPServer()

	return root, nil
}

// loadConfig loads the application configuration
func (r *CompositionRoot) loadConfig() error {
	cfg, err := config.LoadConfig(GetConfigPath(), r.Logger)
	if err != nil {
		return err
	}

	r.Config = cfg
	return nil
}

// initLogger replaces the bootstrap logger with one at the configured level
func (r *CompositionRoot) initLogger() error {
	logger, err := NewLogger(r.Config.Log.Level)
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

// initCollaborators creates the transport, filesystem and compiler
func (r *CompositionRoot) initCollaborators() {
	r.Transport = transport.NewHTTPTransport(&http.Client{Timeout: r.Config.HTTP.Timeout()}, r.Logger)
	r.FileSystem = filesystem.NewOS()
	r.Compiler = handlebars.NewCompiler()
}

// initEngine creates the render engine from the render and cache sections
func (r *CompositionRoot) initEngine() {
	cfg := render.DefaultConfig()
	cfg.Placeholder = r.Config.Render.Placeholder
	cfg.PartialsDirs = r.Config.Render.PartialsDirs
	cfg.MaxAge = r.Config.Cache.MaxAgeDuration()
	cfg.StaleWhileRevalidate = r.Config.Cache.StaleWhileRevalidateDuration()
	cfg.Size = r.Config.Cache.Size

	if layout := models.ParseResource(r.Config.Render.Layout); !layout.IsZero() {
		cfg.Layout = &layout
	}

	r.Engine = render.NewEngine(cfg, r.Transport, r.FileSystem, r.Compiler, r.Logger)
	r.Logger.Info("Render engine initialized",
		zap.String("layout", r.Config.Render.Layout),
		zap.Strings("partials_dirs", cfg.PartialsDirs),
		zap.Duration("max_age", cfg.MaxAge),
		zap.Duration("stale_while_revalidate", cfg.StaleWhileRevalidate),
		zap.Int("size", cfg.Size))
}

// initHTTPServer initializes the HTTP server
func (r *CompositionRoot) initHTTPServer() {
	r.HTTPServer = httpserver.NewServer(
		r.Engine,
		httpserver.ViewsConfig{
			Dir:       r.Config.Render.ViewsDir,
			Extension: r.Config.Render.ViewExtension,
		},
		r.Logger,
	)
}

// Cleanup performs cleanup of all resources
func (r *CompositionRoot) Cleanup() error {
	if r.Logger != nil {
		if err := r.Logger.Sync(); err != nil {
			return fmt.Errorf("failed to sync logger: %w", err)
		}
	}
	return nil
}
