package api

import (
	"errors"
	"net/http"
	"strconv"

	"PlayHorizon/internal/database"
	"PlayHorizon/internal/repository"
	"PlayHorizon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GameHandler 公开的目录查询接口
type GameHandler struct {
	catalog *service.CatalogService
	db      *gorm.DB
	logger  *logrus.Logger
}

// NewGameHandler 创建 GameHandler
func NewGameHandler(catalog *service.CatalogService, db *gorm.DB, logger *logrus.Logger) *GameHandler {
	return &GameHandler{catalog: catalog, db: db, logger: logger}
}

func parseAppID(c *gin.Context) (int64, bool) {
	appID, err := strconv.ParseInt(c.Param("appId"), 10, 64)
	if err != nil || appID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid app id"})
		return 0, false
	}
	return appID, true
}

// Health GET /api/health
func (h *GameHandler) Health(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), h.db); err != nil {
		h.logger.WithError(err).Error("Database connection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Database connection successful"})
}

// ListGames GET /api/games?page=1&pageSize=10
func (h *GameHandler) ListGames(c *gin.Context) {
	page := service.ParsePage(c.Query("page"))
	pageSize := service.ParsePageSize(c.Query("pageSize"), service.DefaultPageSize)

	result, err := h.catalog.ListGames(c.Request.Context(), page, pageSize)
	if err != nil {
		respondListError(c, h.logger, err, "Failed to fetch games")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchGames GET /api/games/search?query=
func (h *GameHandler) SearchGames(c *gin.Context) {
	games, err := h.catalog.SearchGames(c.Request.Context(), c.Query("query"))
	if err != nil {
		if errors.Is(err, service.ErrEmptySearchQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "games": []interface{}{}})
			return
		}
		h.logger.WithError(err).Error("SearchGames failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Search failed",
			"message": err.Error(),
			"games":   []interface{}{},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games, "total": len(games)})
}

// GetGame GET /api/games/:appId
func (h *GameHandler) GetGame(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}
	detail, err := h.catalog.GetGameDetail(c.Request.Context(), appID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch game details", true)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PriceHistory GET /api/games/:appId/price-history
func (h *GameHandler) PriceHistory(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}
	history, err := h.catalog.PriceHistory(c.Request.Context(), appID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch price history", false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"app_id": appID, "history": history})
}

// Metrics GET /api/games/:appId/metrics
func (h *GameHandler) Metrics(c *gin.Context) {
	appID, ok := parseAppID(c)
	if !ok {
		return
	}
	metrics, err := h.catalog.GameMetrics(c.Request.Context(), appID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to calculate game metrics", false)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// Trending GET /api/trending
func (h *GameHandler) Trending(c *gin.Context) {
	games, err := h.catalog.Trending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch trending games", false)
		return
	}
	c.JSON(http.StatusOK, games)
}

// ByGenre GET /api/by-genre?genre=&minPrice=&maxPrice=&page=&pageSize=
// 分页信息放在 X-* 响应头里，响应体只有游戏列表
func (h *GameHandler) ByGenre(c *gin.Context) {
	params := repository.GenreFilterParams{
		Genre:    c.Query("genre"),
		MinPrice: service.ParsePrice(c.Query("minPrice"), 0),
		MaxPrice: service.ParsePrice(c.Query("maxPrice"), 100),
		Page:     service.ParsePage(c.Query("page")),
		PageSize: service.ParsePageSize(c.Query("pageSize"), service.DefaultGenrePageSize),
	}

	rows, meta, err := h.catalog.FilterByGenre(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch games", false)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(meta.TotalCount, 10))
	c.Header("X-Current-Page", strconv.Itoa(meta.CurrentPage))
	c.Header("X-Total-Pages", strconv.Itoa(meta.TotalPages))
	c.Header("X-Page-Size", strconv.Itoa(meta.PageSize))
	c.JSON(http.StatusOK, rows)
}

// ListGenres GET /api/genres
func (h *GameHandler) ListGenres(c *gin.Context) {
	genres, err := h.catalog.ListGenres(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch genres", false)
		return
	}
	c.JSON(http.StatusOK, genres)
}
