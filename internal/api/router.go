package api

import (
	"fmt"
	"time"

	"PlayHorizon/internal/auth"
	"PlayHorizon/internal/config"
	"PlayHorizon/internal/metrics"
	"PlayHorizon/internal/repository"
	"PlayHorizon/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders: []string{"X-Total-Count", "X-Current-Page", "X-Total-Pages", "X-Page-Size", headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// NewRouter 组装仓储、服务与全部路由
func NewRouter(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) (*gin.Engine, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("初始化 token 管理器失败: %w", err)
	}

	gameRepo := repository.NewGameRepository(db)
	userRepo := repository.NewUserRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	genreFilter := repository.NewGenreFilter(cfg.Catalog.GenreFilter, db)

	catalogSvc := service.NewCatalogService(gameRepo, genreFilter, cfg.Catalog, logger)
	authSvc := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost, logger)
	librarySvc := service.NewLibraryService(libraryRepo, gameRepo, logger)

	m := metrics.New()

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger), cors.New(corsConfig(cfg.Server.AllowOrigins)), m.Middleware(), Timeout(cfg.Server.RequestTimeout))

	r.GET("/metrics", gin.WrapH(m.Handler()))
	if cfg.Server.Pprof {
		pprof.Register(r)
	}

	authHandler := NewAuthHandler(authSvc, logger)
	gameHandler := NewGameHandler(catalogSvc, db, logger)
	adminHandler := NewAdminHandler(catalogSvc, m, logger)
	libraryHandler := NewLibraryHandler(librarySvc, logger)

	authed := AuthRequired(authSvc)

	apiGroup := r.Group("/api")
	apiGroup.GET("/health", gameHandler.Health)

	credentials := apiGroup.Group("")
	if cfg.RateLimit.Enabled {
		credentials.Use(NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger).Handler())
	}
	credentials.POST("/signup", authHandler.Signup)
	credentials.POST("/login", authHandler.Login)

	// 公开目录查询
	apiGroup.GET("/games", gameHandler.ListGames)
	apiGroup.GET("/games/search", gameHandler.SearchGames)
	apiGroup.GET("/games/:appId", gameHandler.GetGame)
	apiGroup.GET("/games/:appId/price-history", gameHandler.PriceHistory)
	apiGroup.GET("/games/:appId/metrics", gameHandler.Metrics)
	apiGroup.GET("/trending", gameHandler.Trending)
	apiGroup.GET("/by-genre", gameHandler.ByGenre)
	apiGroup.GET("/genres", gameHandler.ListGenres)

	// 管理员
	admin := apiGroup.Group("/games", authed, AdminRequired(authSvc, logger))
	admin.POST("", adminHandler.CreateGame)
	admin.PUT("/:appId", adminHandler.UpdateGame)
	admin.DELETE("/:appId", adminHandler.DeleteGame)

	apiGroup.GET("/users/me", authed, authHandler.Me)

	// 用户游戏库
	library := apiGroup.Group("/users/:userId/games", authed, SelfOnly())
	library.GET("", libraryHandler.List)
	library.POST("", libraryHandler.Add)
	library.DELETE("/:appId", libraryHandler.Remove)
	library.PATCH("/:appId", libraryHandler.UpdatePlaytime)

	return r, nil
}
