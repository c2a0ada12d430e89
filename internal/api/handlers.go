package api

import (
	"embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vacationplanner/internal/auth"
	"vacationplanner/internal/logging"
	"vacationplanner/internal/models"
	"vacationplanner/internal/service/assistant"
)

const serviceName = "vacation-planner"

//go:embed web/index.html
var webFS embed.FS

// Handler wires HTTP routes to the assistant service and the passkey registry.
type Handler struct {
	assistant *assistant.Service
	auth      *auth.Service
	logger    *zap.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(service *assistant.Service, authService *auth.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		assistant: service,
		auth:      authService,
		logger:    logger,
	}
}

// NewRouter builds a gin engine with recovery, request logging and all routes.
func (h *Handler) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.logger))
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.index)
	api := router.Group("/api")
	api.GET("/", h.health)
	api.POST("/auth/passkey/register", h.registerPasskey)
	api.POST("/chat", h.chat)
	api.GET("/chat/history", h.auth.Middleware(), h.chatHistory)
}

func (h *Handler) index(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ui unavailable"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

type registerPasskeyRequest struct {
	PasskeyID string `json:"passkeyId"`
}

func (h *Handler) registerPasskey(c *gin.Context) {
	var req registerPasskeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	passkeyID := req.PasskeyID
	if passkeyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passkeyId required"})
		return
	}
	if err := h.auth.Register(c.Request.Context(), passkeyID); err != nil {
		h.logger.Error("register passkey failed", logging.Passkey(passkeyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register passkey"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "passkeyId": passkeyID})
}

func (h *Handler) chatHistory(c *gin.Context) {
	passkeyID, ok := auth.PasskeyFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passkeyId required in " + h.auth.HeaderName() + " header"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": h.assistant.History(c.Request.Context(), passkeyID)})
}

type chatRequest struct {
	Messages  []models.Message `json:"messages"`
	PasskeyID string           `json:"passkeyId"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	passkeyID := req.PasskeyID
	if passkeyID == "" {
		passkeyID = c.GetHeader(h.auth.HeaderName())
	}

	result, err := h.assistant.Chat(c.Request.Context(), passkeyID, req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrPasskeyRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "passkeyId required"})
		case errors.Is(err, assistant.ErrNoMessages):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No messages provided"})
		case errors.Is(err, assistant.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request", "message": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
