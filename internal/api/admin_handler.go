package api

import (
	"net/http"

	"PlayHorizon/internal/metrics"
	"PlayHorizon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler 管理员目录维护接口（路由层已挂 AuthRequired + AdminRequired）
type AdminHandler struct {
	catalog *service.CatalogService
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(catalog *service.CatalogService, m *metrics.Metrics, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, metrics: m, logger: logger}
}

// CreateGame POST /api/games
func (h *AdminHandler) CreateGame(c *gin.Context) {
	var req service.CreateGameInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.catalog.CreateGame(c.Request.Context(), &req)
	h.metrics.RecordMutation("create", err)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create game", false)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Game created successfully"})
}

// UpdateGame PUT /api/games/:appId
func (h *AdminHandler) UpdateGame(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}
	var req service.UpdateGameInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.catalog.UpdateGame(c.Request.Context(), appID, &req)
	h.metrics.RecordMutation("update", err)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update game", true)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Game and related data updated successfully",
		"updatedGameId": appID,
	})
}

// DeleteGame DELETE /api/games/:appId
func (h *AdminHandler) DeleteGame(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}

	err := h.catalog.DeleteGame(c.Request.Context(), appID)
	h.metrics.RecordMutation("delete", err)
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete game", true)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Game and all related data deleted successfully",
		"deletedGameId": appID,
	})
}
