package service

import (
	"context"
	"io"
	"net/http"

	"github.com/hupe1980/agentrelay/engine"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/session"
)

// Options configure a Service.
type Options struct {
	// Role is the memory namespace label used to derive session keys.
	// Defaults to the service name.
	Role string

	// Store persists per-role session state. Defaults to an in-memory store.
	Store session.Store

	// Logger receives structured request logs. Defaults to a no-op logger.
	Logger logging.Logger

	// Metrics collects request/event instrumentation. Defaults to a fresh
	// collector with its own registry so several services can share a
	// process.
	Metrics *Metrics
}

// Service hosts one agent behind POST /process. Construct with New, wire the
// Handler into an http.Server, and call Initialize/Shutdown around the server
// lifecycle.
type Service struct {
	name    string
	role    string
	engine  engine.Engine
	store   session.Store
	logger  logging.Logger
	metrics *Metrics
}

// New constructs a Service for the given agent name and reasoning engine.
func New(name string, eng engine.Engine, optFns ...func(o *Options)) *Service {
	opts := Options{
		Role:   name,
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &Service{
		name:    name,
		role:    opts.Role,
		engine:  eng,
		store:   opts.Store,
		logger:  logging.OrDefault(opts.Logger),
		metrics: opts.Metrics,
	}
}

// Name returns the agent name.
func (s *Service) Name() string { return s.name }

// Role returns the memory namespace label.
func (s *Service) Role() string { return s.role }

// Initialize prepares the service for traffic.
func (s *Service) Initialize(_ context.Context) error {
	s.logger.Info("agent service initialized", "service", s.name, "role", s.role)
	return nil
}

// Shutdown releases owned resources, closing the store when it supports it.
func (s *Service) Shutdown(_ context.Context) error {
	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	s.logger.Info("agent service stopped", "service", s.name)
	return nil
}

// Handler returns the HTTP surface: POST /process plus GET /metrics.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/process", s.handleProcess)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}
