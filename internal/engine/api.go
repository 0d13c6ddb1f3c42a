package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/models"
)

// APIServer exposes the execution engine over HTTP.
type APIServer struct {
	server *http.Server
	engine *Engine
	apiKey string
	logger *zap.Logger
}

// executeOrderRequest is the JSON body of POST /executeOrder.
type executeOrderRequest struct {
	ThresholdID  string  `json:"thresholdId" binding:"required"`
	Condition    string  `json:"condition" binding:"required"`
	CurrentPrice float64 `json:"currentPrice" binding:"required,gt=0"`
}

// NewAPIServer creates the HTTP server for the engine.
func NewAPIServer(engine *Engine, port int, apiKey string, gatherer prometheus.Gatherer, logger *zap.Logger) *APIServer {
	s := &APIServer{
		engine: engine,
		apiKey: apiKey,
		logger: logger.Named("api-server"),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.POST("/executeOrder", s.authenticate, s.executeOrderHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

// authenticate enforces the static API key header.
func (s *APIServer) authenticate(c *gin.Context) {
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "Unauthorized"})
		return
	}
	c.Next()
}

func (s *APIServer) executeOrderHandler(c *gin.Context) {
	requestID := uuid.NewString()
	l := s.logger.With(zap.String("request_id", requestID))

	var req executeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BadRequest"})
		return
	}

	kind, err := models.ParseOrderKind(req.Condition)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BadRequest"})
		return
	}

	result, err := s.engine.ExecuteOrder(c.Request.Context(), ExecuteRequest{
		ThresholdID:  req.ThresholdID,
		Kind:         kind,
		CurrentPrice: req.CurrentPrice,
	})
	if err != nil {
		status, code := classifyError(err)
		l.Warn("Order execution failed",
			zap.String("threshold_id", req.ThresholdID),
			zap.String("code", code),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	message := "order executed"
	if result.Simulated {
		message = "order simulated (dry run)"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "txHash": result.TxHash})
}

// classifyError maps the pipeline error taxonomy onto HTTP status codes. The
// split matters to callers: 4xx means "not eligible, nothing was spent",
// while a revert is a 500 that may still have consumed ledger fees.
func classifyError(err error) (int, string) {
	var cooldown *CooldownError
	var revert *RevertError
	var transient *TransientError

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, ErrAlreadyExecuting):
		return http.StatusConflict, "AlreadyExecuting"
	case errors.As(err, &cooldown):
		return http.StatusConflict, "RecentlyExecuted"
	case errors.Is(err, ErrNotActive):
		return http.StatusConflict, "NotActive"
	case errors.Is(err, ErrConditionNotMet):
		return http.StatusBadRequest, "ConditionNotMet"
	case errors.Is(err, ErrInvalidPairConfig):
		return http.StatusBadRequest, "InvalidPairConfiguration"
	case errors.Is(err, ErrCapExceeded):
		return http.StatusBadRequest, "CapExceeded"
	case errors.As(err, &revert):
		return http.StatusInternalServerError, "ContractRevert"
	case errors.As(err, &transient):
		return http.StatusInternalServerError, "TransientError"
	}
	return http.StatusInternalServerError, "InternalError"
}
