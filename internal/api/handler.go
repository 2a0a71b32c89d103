// Package api exposes the recommendation engine over HTTP with gin.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/logger"
	"github.com/diekoffieblik/brewcast/internal/models"
	"github.com/diekoffieblik/brewcast/internal/recommender"
)

// maxBodyBytes bounds an inline order-history payload
const maxBodyBytes = 8 << 20

// Recommender produces a recommendation for a request
type Recommender interface {
	Recommend(ctx context.Context, req recommender.Request) (*models.Recommendation, error)
}

// Handler handles all API requests
type Handler struct {
	engine Recommender
}

// NewHandler creates a new API handler
func NewHandler(engine Recommender) *Handler {
	return &Handler{engine: engine}
}

// SetupRoutes configures all API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.POST("/recommendations", h.PostRecommendations)
		api.GET("/recommendations/:userId", h.GetUserRecommendations)
	}
}

// NewRouter builds a gin engine with recovery, request logging and the API routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})
	h.SetupRoutes(router)
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PostRecommendations scores an inline order-history body, or the stored
// history of user_id when the body is empty.
func (h *Handler) PostRecommendations(c *gin.Context) {
	req, err := parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	req.UserID = c.Query("user_id")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		badRequest(c, fmt.Errorf("%w: failed to read body: %v", models.ErrMalformedInput, err))
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		lines, err := history.ParseHistory(bytes.NewReader(body))
		if err != nil {
			badRequest(c, err)
			return
		}
		req.Orders = lines
	}

	h.respond(c, req)
}

// GetUserRecommendations scores the stored history of the path user
func (h *Handler) GetUserRecommendations(c *gin.Context) {
	req, err := parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	req.UserID = c.Param("userId")

	h.respond(c, req)
}

func (h *Handler) respond(c *gin.Context, req recommender.Request) {
	rec, err := h.engine.Recommend(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrMalformedInput) {
			badRequest(c, err)
			return
		}
		logger.Error("Error getting recommendations for user=%q: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"request_id":      uuid.NewString(),
		"recommendations": rec,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// parseQuery reads lat, lon, max, at and strategy. Coordinates are optional
// but must come as a pair.
func parseQuery(c *gin.Context) (recommender.Request, error) {
	var req recommender.Request

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if (latStr == "") != (lonStr == "") {
		return req, fmt.Errorf("%w: lat and lon must be given together", models.ErrMalformedInput)
	}
	if latStr != "" {
		lat, err := parseCoordinate("lat", latStr, 90)
		if err != nil {
			return req, err
		}
		lon, err := parseCoordinate("lon", lonStr, 180)
		if err != nil {
			return req, err
		}
		req.Lat, req.Lon = &lat, &lon
	}

	if s := c.Query("max"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return req, fmt.Errorf("%w: max must be a positive integer", models.ErrMalformedInput)
		}
		req.MaxSuggestions = n
	}

	if s := c.Query("at"); s != "" {
		at, err := models.ParseTimestamp(s)
		if err != nil {
			return req, fmt.Errorf("%w: at: %v", models.ErrMalformedInput, err)
		}
		req.Target = at
	}

	if s := c.Query("strategy"); s != "" {
		strategy, err := recommender.NewStrategy(s)
		if err != nil {
			return req, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
		}
		req.Strategy = strategy
	}

	return req, nil
}

func parseCoordinate(name, s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("%w: invalid %s %q", models.ErrMalformedInput, name, s)
	}
	return v, nil
}
