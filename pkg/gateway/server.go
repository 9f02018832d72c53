// Package gateway serves the inbound interactions endpoint. Every request is
// verified against the application public key before its body is parsed,
// then decoded, routed to a handler and answered with a terminal status.
package gateway

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"go.uber.org/zap"

	"interactbot/pkg/client"
	"interactbot/pkg/config"
	"interactbot/pkg/guard"
	"interactbot/pkg/interaction"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
	"interactbot/pkg/snowflake"
	"interactbot/pkg/status"
	"interactbot/pkg/verify"
)

const (
	bodyKey   = "interaction_body"
	loggerKey = "request_logger"

	headerRequestID = "X-Request-ID"

	invalidSignature = "Invalid request signature."
	received         = "Interaction received."
)

// Server is the interactions HTTP server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	listener   net.Listener
	config     *config.Config
	logger     *logger.Logger
	publicKey  ed25519.PublicKey
	decoder    *interaction.Decoder
	router     *router.Router
	now        func() time.Time
}

// NewServer creates the interactions server.
func NewServer(cfg *config.Config, log *logger.Logger, cl *client.Client, g guard.Guard, r *router.Router) *Server {
	s := &Server{
		config:    cfg,
		logger:    log,
		publicKey: cl.PublicKey(),
		decoder:   interaction.NewDecoder(cl, g, log),
		router:    r,
		now:       time.Now,
	}

	s.setup()
	return s
}

func (s *Server) setup() {
	e := echo.New()
	e.Use(middleware.Recover())

	e.GET("/health", s.handleHealth)
	e.POST(s.config.Server.Path, s.handleInteraction, s.requestID, s.verifySignature)

	s.echo = e
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.logger.Info("Interactions server starting",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", s.config.Server.Path),
	)

	// Served through http.Server so fx controls shutdown.
	s.httpServer = &http.Server{
		Handler:     s.echo,
		ReadTimeout: time.Duration(s.config.Server.ReadTimeoutSeconds) * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Interactions server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Interactions server stopping")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requestID tags the request with a fresh id and a logger carrying it.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := uuid.New().String()
		c.Response().Header().Set(headerRequestID, id)
		c.Set(loggerKey, s.logger.WithFields(zap.String("request_id", id)))
		return next(c)
	}
}

// verifySignature rejects requests whose body is not signed by the
// application key. The body is stashed for the handler and never logged.
func (s *Server) verifySignature(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		log := requestLogger(c, s.logger)
		req := c.Request()

		body, err := io.ReadAll(io.LimitReader(req.Body, s.maxBodyBytes()+1))
		if err != nil {
			log.Warn("Failed to read interaction body", zap.Error(err))
			return c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		}
		if int64(len(body)) > s.maxBodyBytes() {
			log.Warn("Interaction body too large", zap.Int64("limit", s.maxBodyBytes()))
			return c.String(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge))
		}
		if len(body) == 0 {
			log.Warn("Rejected interaction with empty body", status.NotImplemented.Field())
			return c.String(http.StatusNotImplemented, invalidSignature)
		}

		sig := req.Header.Get(verify.HeaderSignature)
		ts := req.Header.Get(verify.HeaderTimestamp)
		if !verify.Signature(s.publicKey, sig, ts, body) {
			log.Warn("Rejected interaction with invalid signature", status.Unauthorized.Field())
			return c.String(http.StatusUnauthorized, invalidSignature)
		}

		c.Set(bodyKey, body)
		return next(c)
	}
}

func (s *Server) maxBodyBytes() int64 {
	if s.config.Server.MaxBodyBytes > 0 {
		return s.config.Server.MaxBodyBytes
	}
	return 1 << 20
}

func (s *Server) handleInteraction(c *echo.Context) error {
	log := requestLogger(c, s.logger)
	body, _ := c.Get(bodyKey).([]byte)

	in, err := s.decoder.WithLogger(log).Decode(body)
	if err != nil {
		log.Warn("Malformed interaction", status.BadRequest.Field(), zap.Error(err))
		return c.String(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
	}

	info := in.Info()
	log = log.WithFields(
		zap.String("interaction_id", info.ID),
		zap.String("interaction_type", interaction.TypeName(info.Type)),
	)
	if age, err := snowflake.Age(info.ID, s.now()); err == nil {
		log.Debug("Interaction received", zap.Duration("age", age))
	}

	if _, ok := in.(*interaction.Ping); ok {
		return c.JSON(http.StatusOK, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
	}

	if err := s.router.Route(c.Request().Context(), in); err != nil {
		fields := []zap.Field{status.NotFound.Field(), zap.Error(err)}
		if kind, key, ok := router.KeyOf(in); ok {
			fields = append(fields, zap.Stringer("kind", kind), zap.String("key", key))
		}
		var herr *router.HandlerError
		if errors.As(err, &herr) {
			log.Error("Interaction handler failed", append(fields, zap.Bool("panicked", herr.Panicked))...)
		} else {
			log.Error("No handler for interaction", fields...)
		}
		return c.NoContent(http.StatusNotFound)
	}

	return c.String(http.StatusOK, received)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(c *echo.Context, fallback *logger.Logger) *logger.Logger {
	if log, ok := c.Get(loggerKey).(*logger.Logger); ok {
		return log
	}
	return fallback
}
