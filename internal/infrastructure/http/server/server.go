package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	fiscalyearhandler "3tcapital/ms_admision_facturas/internal/adapters/http/fiscalyear"
	healthhandler "3tcapital/ms_admision_facturas/internal/adapters/http/health"
	invoicehandler "3tcapital/ms_admision_facturas/internal/adapters/http/invoice"
	supplierhandler "3tcapital/ms_admision_facturas/internal/adapters/http/supplier"
	"3tcapital/ms_admision_facturas/internal/infrastructure/config"
	"3tcapital/ms_admision_facturas/internal/infrastructure/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the HTTP adapters the server exposes.
type Handlers struct {
	Invoice    *invoicehandler.Handler
	Supplier   *supplierhandler.Handler
	FiscalYear *fiscalyearhandler.Handler
	Health     *healthhandler.Handler
}

// Server hosts the admission API.
type Server struct {
	log        *slog.Logger
	httpServer *http.Server
}

// Options holds everything New needs to assemble the server.
type Options struct {
	Config   config.AppConfig
	Logger   *slog.Logger
	Auth     *middleware.JWTAuthenticator
	Handlers Handlers
}

// New builds the router and the HTTP server around it.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Handlers.Invoice == nil || opts.Handlers.Supplier == nil || opts.Handlers.FiscalYear == nil || opts.Handlers.Health == nil {
		return nil, errors.New("all handlers are required")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Timeout(opts.Config.HTTP.RequestTimeout))
	if opts.Auth != nil {
		r.Use(opts.Auth.Middleware)
	}

	r.Get("/health", opts.Handlers.Health.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/facturas", opts.Handlers.Invoice.Submit)
		r.Get("/facturas/siguiente-numero", opts.Handlers.Invoice.NextNumber)
		r.Get("/facturas/alerta-umbral", opts.Handlers.Invoice.Threshold)

		r.Post("/ejercicio/cambio", opts.Handlers.FiscalYear.Switch)

		r.Post("/proveedores/resolver", opts.Handlers.Supplier.Resolve)
		r.Get("/proveedores/{id}", opts.Handlers.Supplier.Get)
		r.Put("/proveedores/{id}", opts.Handlers.Supplier.Update)
		r.Delete("/proveedores/{id}", opts.Handlers.Supplier.Delete)
	})

	httpServer := &http.Server{
		Addr:         opts.Config.HTTP.Address(),
		Handler:      r,
		ReadTimeout:  opts.Config.HTTP.ReadTimeout,
		WriteTimeout: opts.Config.HTTP.WriteTimeout,
		IdleTimeout:  opts.Config.HTTP.IdleTimeout,
	}

	return &Server{
		log:        opts.Logger,
		httpServer: httpServer,
	}, nil
}

// Start listens until the server is shut down.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
