package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/google/uuid"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/adapters"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/ports"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/ports/middleware"
)

// Config holds the configuration settings for the HTTP server.
type Config struct {
	// AppName is the name of the application.
	AppName string `mapstructure:"app_name"`

	// Port is the TCP port on which the server will listen.
	Port int `mapstructure:"port"`

	// Addr is the address the server will bind to.
	Addr string `mapstructure:"addr"`

	// ServerHeader is the value of the Server header returned in HTTP responses.
	ServerHeader string `mapstructure:"server_header"`

	// AdminBearerToken is the token required to access admin-only endpoints.
	AdminBearerToken string `mapstructure:"admin_bearer_token"`

	// ConnectionReadTimeout defines the maximum duration an active connection is allowed to stay open.
	// Once this threshold is exceeded, the connection will be forcefully closed.
	ConnectionReadTimeout time.Duration `mapstructure:"connection_read_timeout_limit"`
}

// DefaultConfig provides a default configuration with reasonable values for local development.
var DefaultConfig = Config{
	AppName:               "Minima Gateway API v0.0.0",
	Port:                  3000,
	Addr:                  "localhost",
	ServerHeader:          "Minima Gateway API",
	AdminBearerToken:      uuid.NewString(),
	ConnectionReadTimeout: 10 * time.Second,
}

// ServerOption defines a functional option for configuring an HTTP server.
// These options allow for flexible setup of middlewares and configurations.
type ServerOption func(*ServerHTTP)

// WithConfig sets the configuration for the HTTP server using the provided Config.
// It initializes a new Fiber application with the specified server settings.
// Returns a ServerOption to apply during server setup.
func WithConfig(cfg Config) ServerOption {
	return func(s *ServerHTTP) {
		s.cfg = cfg
		s.app = newFiberApp(cfg)
	}
}

// WithMiddleware adds a Fiber middleware handler to the HTTP server configuration.
// It returns a ServerOption that appends the given middleware to the server's middleware stack.
func WithMiddleware(f fiber.Handler) ServerOption {
	return func(s *ServerHTTP) {
		s.middleware = append(s.middleware, f)
	}
}

// WithDraftEngine sets the draft engine provider backing the session routes.
func WithDraftEngine(provider app.DraftEngineProvider) ServerOption {
	return func(s *ServerHTTP) {
		s.drafts = provider
	}
}

// WithNodeQueries sets the node query provider backing the node routes.
func WithNodeQueries(provider app.NodeQueryProvider) ServerOption {
	return func(s *ServerHTTP) {
		s.node = provider
	}
}

// WithAdminBearerToken sets the admin bearer token used for authenticating
// admin routes on the HTTP server.
// It returns a ServerOption that applies this configuration to ServerHTTP.
func WithAdminBearerToken(token string) ServerOption {
	return func(s *ServerHTTP) {
		s.cfg.AdminBearerToken = token
	}
}

// ServerHTTP represents the HTTP server instance, including configuration,
// Fiber app instance, middleware stack, and registered request handlers.
type ServerHTTP struct {
	cfg        Config          // cfg holds the server configuration settings.
	app        *fiber.App      // app is the Fiber application instance serving HTTP requests.
	middleware []fiber.Handler // middleware is a list of Fiber middleware functions to be applied globally.
	drafts     app.DraftEngineProvider
	node       app.NodeQueryProvider
}

// SocketAddr builds the address string for binding.
func (s *ServerHTTP) SocketAddr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Addr, s.cfg.Port)
}

// ListenAndServe starts the HTTP server and begins listening on the configured socket address.
// It blocks until the server is stopped or an error occurs.
func (s *ServerHTTP) ListenAndServe(ctx context.Context) error {
	return s.app.Listen(s.SocketAddr())
}

// Shutdown gracefully shuts down the HTTP server using the provided context,
// allowing ongoing requests to complete within the context's deadline.
func (s *ServerHTTP) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// New creates and configures a new instance of ServerHTTP.
// It initializes the application with default settings and middleware, wires the
// draft session routes and node query routes against the configured providers,
// and applies any optional functional configuration options passed via opts.
// Without explicit providers the server falls back to the noop node backend,
// keeping it bootable without a running node.
func New(opts ...ServerOption) *ServerHTTP {
	noop := adapters.NewNoopNodeProvider()
	srv := &ServerHTTP{
		cfg:  DefaultConfig,
		app:  newFiberApp(DefaultConfig),
		node: noop,
	}

	for _, o := range opts {
		o(srv)
	}

	if srv.drafts == nil {
		srv.drafts = defaultDraftEngine(noop)
	}

	for _, m := range middleware.BasicMiddlewareGroup(middleware.BasicMiddlewareGroupConfig{EnableStackTrace: true}) {
		srv.app.Use(m)
	}
	for _, m := range srv.middleware {
		srv.app.Use(m)
	}

	registry := ports.NewHandlerRegistryService(srv.drafts, srv.node)
	registry.RegisterRoutes(srv.app, srv.cfg.AdminBearerToken)

	srv.app.Get("/metrics", monitor.New(monitor.Config{Title: "Minima Gateway API"}))

	return srv
}

// defaultDraftEngine builds a session engine over an in-memory store and the
// noop node backend. Used when no explicit draft engine has been configured.
func defaultDraftEngine(node session.NodeProvider) *session.Engine {
	store := session.NewStore(session.DefaultStoreConfig)
	return session.NewEngine(store, node, session.Config{})
}

// newFiberApp creates and returns a new instance of a fiber.App with the provided configuration.
// The app is configured with case-sensitive routing, custom server headers, read timeout settings
// and the gateway's central error handler.
func newFiberApp(cfg Config) *fiber.App {
	return fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
		ServerHeader:  cfg.ServerHeader,
		AppName:       cfg.AppName,
		ReadTimeout:   cfg.ConnectionReadTimeout,
		ErrorHandler:  ports.ErrorHandler(),
	})
}
