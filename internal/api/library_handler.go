package api

import (
	"net/http"

	"PlayHorizon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LibraryHandler 用户游戏库（路由层已挂 AuthRequired + SelfOnly）
type LibraryHandler struct {
	library *service.LibraryService
	logger  *logrus.Logger
}

// NewLibraryHandler 创建 LibraryHandler
func NewLibraryHandler(library *service.LibraryService, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{library: library, logger: logger}
}

type addLibraryRequest struct {
	AppID int64 `json:"app_id"`
}

type playtimeRequest struct {
	MinutesPlayed int `json:"minutes_played"`
}

// List GET /api/users/:userId/games
func (h *LibraryHandler) List(c *gin.Context) {
	games, err := h.library.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondListError(c, h.logger, err, "Failed to fetch library")
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Add POST /api/users/:userId/games
func (h *LibraryHandler) Add(c *gin.Context) {
	var req addLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	item, err := h.library.Add(c.Request.Context(), currentUserID(c), req.AppID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add game to library", false)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Game added to library", "entry": item})
}

// Remove DELETE /api/users/:userId/games/:appId
func (h *LibraryHandler) Remove(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}
	if err := h.library.Remove(c.Request.Context(), currentUserID(c), appID); err != nil {
		respondError(c, h.logger, err, "Failed to remove game from library", false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game removed from library"})
}

// UpdatePlaytime PATCH /api/users/:userId/games/:appId
func (h *LibraryHandler) UpdatePlaytime(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}
	var req playtimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	item, err := h.library.AddPlaytime(c.Request.Context(), currentUserID(c), appID, req.MinutesPlayed)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update playtime", false)
		return
	}
	c.JSON(http.StatusOK, item)
}
