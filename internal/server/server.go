package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"agent-dispatch/internal/agent"
	"agent-dispatch/internal/config"
	"agent-dispatch/internal/history"
	"agent-dispatch/internal/router"
	"agent-dispatch/internal/translator"
)

const (
	maxUploadBytes      = 32 << 20 // 32 MiB
	maxFormMemory       = 8 << 20
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 60 * time.Second
	writeGrace          = 15 * time.Second
	idleTimeout         = 120 * time.Second
)

// HistoryLister exposes recorded dispatches.
type HistoryLister interface {
	List(ctx context.Context, filter history.Filter) ([]history.Record, error)
	Get(ctx context.Context, id string) (history.Record, error)
}

type Server struct {
	cfg     config.Config
	router  *router.Router
	history HistoryLister
	app     *echo.Echo
	address string
}

// New constructs an HTTP server wired with routing and middleware. hist may be nil
// when history is disabled.
func New(cfg config.Config, rt *router.Router, hist HistoryLister) (*Server, error) {
	if rt == nil {
		return nil, errors.New("router must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; form-action 'none'",
	}))

	srv := &Server{
		cfg:     cfg,
		router:  rt,
		history: hist,
		app:     e,
		address: fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg.Server.Port)
	slog.Info("starting server", "addr", s.address, "base_url", s.cfg.BaseURL)

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: s.cfg.Timeout + writeGrace,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/v1/agents", s.handleAgents)
	s.app.POST("/v1/agents/:agent/chat", s.handleChat)
	s.app.GET("/v1/history", s.handleHistory)
	s.app.GET("/v1/history/:id", s.handleHistoryRecord)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, translator.FromAgents(s.router.Agents()))
}

func (s *Server) handleChat(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxUploadBytes)

	payload, err := translator.PayloadFromRequest(req, maxFormMemory)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return requestError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Type:    "invalid_request_error",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid form payload: %v", err),
			Type:    "invalid_request_error",
		}
	}
	if req.MultipartForm != nil {
		defer func() { _ = req.MultipartForm.RemoveAll() }()
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	reply, err := s.router.Dispatch(req.Context(), c.Param("agent"), payload)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, translator.FromReply(reply, requestID))
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusOK, translator.FromHistory(nil))
	}

	filter := history.Filter{Agent: c.QueryParam("agent")}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("limit must be a non-negative integer, got %q", raw),
				Type:    "invalid_request_error",
			}
		}
		filter.Limit = limit
	}

	records, err := s.history.List(c.Request().Context(), filter)
	if err != nil {
		slog.Error("failed to list history", "err", err)
		return requestError{
			Status:  http.StatusInternalServerError,
			Message: "failed to list history",
			Type:    "server_error",
		}
	}
	return c.JSON(http.StatusOK, translator.FromHistory(records))
}

func (s *Server) handleHistoryRecord(c echo.Context) error {
	id := c.Param("id")
	if s.history == nil {
		return requestError{
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("history record %s not found", id),
			Type:    "invalid_request_error",
			Code:    "not_found",
		}
	}

	rec, err := s.history.Get(c.Request().Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		return requestError{
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("history record %s not found", id),
			Type:    "invalid_request_error",
			Code:    "not_found",
		}
	}
	if err != nil {
		slog.Error("failed to get history record", "id", id, "err", err)
		return requestError{
			Status:  http.StatusInternalServerError,
			Message: "failed to get history record",
			Type:    "server_error",
		}
	}
	return c.JSON(http.StatusOK, translator.FromRecord(rec))
}

type requestError struct {
	Status  int
	Message string
	Type    string
	Code    string
	Text    string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
	Text      string `json:"text,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(c echo.Context, status int, reqErr requestError) error {
	var payload errorBody
	payload.Error.Message = reqErr.Message
	payload.Error.Type = reqErr.Type
	payload.Error.Code = reqErr.Code
	payload.Text = reqErr.Text
	payload.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	return c.JSON(status, payload)
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = writeError(c, he.Code, requestError{Message: fmt.Sprint(he.Message), Type: "invalid_request_error"})
		return
	}

	_ = writeError(c, http.StatusInternalServerError, requestError{Message: "internal server error", Type: "server_error"})
}

func toHTTPError(err error) error {
	text := agent.DisplayText(err)

	if errors.Is(err, agent.ErrUnknownAgent) {
		return requestError{
			Status:  http.StatusNotFound,
			Message: err.Error(),
			Type:    "invalid_request_error",
			Code:    agent.OutcomeUnknownAgent,
			Text:    text,
		}
	}

	outcome := agent.Outcome(err)
	switch outcome {
	case agent.OutcomeAPIError, agent.OutcomeParseError, agent.OutcomeNetworkError:
		return requestError{
			Status:  http.StatusBadGateway,
			Message: "upstream agent error",
			Type:    "upstream_error",
			Code:    outcome,
			Text:    text,
		}
	case agent.OutcomeRejected:
		return requestError{
			Status:  http.StatusUnprocessableEntity,
			Message: "agent could not serve the request",
			Type:    "invalid_request_error",
			Code:    outcome,
			Text:    text,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return requestError{
			Status:  http.StatusGatewayTimeout,
			Message: "agent request did not complete",
			Type:    "upstream_error",
			Text:    text,
		}
	}

	return requestError{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Type:    "server_error",
		Text:    text,
	}
}

func printStartupBanner(port int) {
	host := "127.0.0.1"
	fmt.Println()
	fmt.Println("agent-dispatch ready")
	fmt.Printf("Listening on http://%s:%d\n", host, port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /v1/agents")
	fmt.Println("  POST /v1/agents/:agent/chat")
	fmt.Println("  GET  /v1/history")
	fmt.Println("  GET  /v1/history/:id")
	fmt.Printf("Example:\n  curl http://%s:%d/v1/agents/market_intelligence/chat -F prompt='Acme Corp' -F supporting_documents=@profile.pdf\n\n", host, port)
}
