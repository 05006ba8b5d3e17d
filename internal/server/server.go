// Package server exposes the calculators over a JSON API and a WebSocket channel.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fraksi/internal/config"
	"fraksi/internal/observability"
	"fraksi/internal/planner"
	"fraksi/internal/presenter"
	"fraksi/internal/rejection"
)

// SessionHeader carries the session id on HTTP requests.
const SessionHeader = "X-Session-ID"

// Server routes requests to the planner.
type Server struct {
	logger   *slog.Logger
	engine   *planner.Engine
	metrics  *observability.Metrics
	cfg      config.ServerConfig
	upgrader websocket.Upgrader
	ops      map[string]operation
	router   *gin.Engine
}

type errorBody struct {
	Kind    rejection.Kind `json:"kind"`
	Message string         `json:"message"`
}

// New builds the router.
func New(logger *slog.Logger, engine *planner.Engine, metrics *observability.Metrics, cfg config.ServerConfig) *Server {
	s := &Server{
		logger:  logger,
		engine:  engine,
		metrics: metrics,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.ops = s.operations()

	r := gin.New()
	r.Use(gin.Recovery())
	s.setupRoutes(r)
	s.router = r
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/rules", s.handleRules)
		api.GET("/tick", s.handleTick)
		api.GET("/band", s.handleBand)
		api.POST("/ladder", s.handleOperation("ladder"))
		api.POST("/trailing-stop", s.handleOperation("trailing_stop"))
		api.POST("/simulate", s.handleOperation("simulate"))
		api.POST("/partial-exit", s.handleOperation("partial_exit"))
		api.POST("/dividend", s.handleOperation("dividend"))

		api.POST("/sessions", s.handleNewSession)
		api.GET("/sessions/:id/view", s.handleGetView)
		api.PUT("/sessions/:id/view", s.handlePutView)
		api.GET("/sessions/:id/simulator", s.handleSimulatorInputs)
		api.GET("/sessions/:id/simulations", s.handleSimulations)
	}

	r.GET("/ws", s.handleWebSocket)
	r.GET("/healthz", s.handleHealthCheck)
	if s.cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// writeError maps a calculation error to its status: malformed bodies are 400,
// rejections 422 and anything else 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, errMalformed):
		status = http.StatusBadRequest
	case !rejection.IsRejection(err):
		status = http.StatusInternalServerError
		s.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, errorBody{Kind: rejection.KindOf(err), Message: presenter.Message(err)})
}

// respond encodes result before writing so an unencodable value still gets an
// error body rather than an empty 200.
func (s *Server) respond(c *gin.Context, result any, err error) {
	if err != nil {
		s.writeError(c, err)
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.writeError(c, fmt.Errorf("encode result: %w", err))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// handleOperation serves a POST route whose JSON body is the operation payload.
func (s *Server) handleOperation(name string) gin.HandlerFunc {
	op := s.ops[name]
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if !json.Valid(body) {
			c.JSON(http.StatusBadRequest, errorBody{
				Kind:    rejection.KindInvalidInput,
				Message: presenter.Message(rejection.ErrInvalidInput),
			})
			return
		}
		result, err := op(c.Request.Context(), c.GetHeader(SessionHeader), body)
		s.respond(c, result, err)
	}
}

// queryNumber reads a numeric query parameter, accepting a decimal comma.
func queryNumber(c *gin.Context, name string) (float64, error) {
	return presenter.ParseNumber(c.Query(name))
}

func (s *Server) handleRules(c *gin.Context) {
	s.respond(c, s.engine.Rules(), nil)
}

func (s *Server) handleTick(c *gin.Context) {
	price, err := queryNumber(c, "price")
	if err != nil {
		s.writeError(c, err)
		return
	}
	info, err := s.engine.Tick(price)
	s.respond(c, info, err)
}

func (s *Server) handleBand(c *gin.Context) {
	reference, err := queryNumber(c, "reference")
	if err != nil {
		s.writeError(c, err)
		return
	}
	limits, err := s.engine.Band(reference)
	s.respond(c, limits, err)
}

func (s *Server) handleNewSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"id": uuid.NewString()})
}

func (s *Server) handleGetView(c *gin.Context) {
	c.JSON(http.StatusOK, viewResponse{View: s.engine.LastView(c.Request.Context(), c.Param("id"))})
}

func (s *Server) handlePutView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{
			Kind:    rejection.KindInvalidInput,
			Message: presenter.Message(rejection.ErrInvalidInput),
		})
		return
	}
	if err := s.engine.SetLastView(c.Request.Context(), c.Param("id"), req.View); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse{View: req.View})
}

func (s *Server) handleSimulatorInputs(c *gin.Context) {
	s.respond(c, s.engine.SimulatorInputs(c.Request.Context(), c.Param("id")), nil)
}

func (s *Server) handleSimulations(c *gin.Context) {
	limit := 0
	if q := c.Query("limit"); q != "" {
		n, err := presenter.ParseInt(q)
		if err != nil {
			s.writeError(c, err)
			return
		}
		limit = n
	}
	runs, err := s.engine.SimulationHistory(c.Request.Context(), c.Param("id"), limit)
	s.respond(c, runs, err)
}

func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
