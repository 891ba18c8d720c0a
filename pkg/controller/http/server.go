package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/buildhook/pkg/domain/interfaces"
)

// DefaultTriggeredMessage is the response body sent when a build is started
const DefaultTriggeredMessage = "Builds triggered"

// config holds internal HTTP server configuration
type config struct {
	addr             string
	webhookSecret    string
	triggeredMessage string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret enables webhook signature verification
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithTriggeredMessage sets the response body used when a build is started
func WithTriggeredMessage(msg string) Option {
	return func(c *config) {
		if msg != "" {
			c.triggeredMessage = msg
		}
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:             ":3000",
		triggeredMessage: DefaultTriggeredMessage,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	webhookHandler := NewWebhookHandler(webhookUC,
		WithHandlerSecret(cfg.webhookSecret),
		WithHandlerTriggeredMessage(cfg.triggeredMessage),
	)
	router.Post("/webhook", webhookHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		},
	}

	return server, nil
}
