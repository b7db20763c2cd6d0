package adminapi

import (
	"github.com/poolkeeper/provider-pool-manager/internal/adminapi/handlers"
	"github.com/poolkeeper/provider-pool-manager/internal/adminapi/middleware"
	"github.com/poolkeeper/provider-pool-manager/internal/events"
	"github.com/poolkeeper/provider-pool-manager/internal/pool"
	"github.com/poolkeeper/provider-pool-manager/internal/stats"
	"github.com/poolkeeper/provider-pool-manager/internal/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置管理接口路由。这个面是纯粹的运维/操作面：
// 列出、禁用/启用、重置计数、触发健康检查，以及 token 管理——
// 请求时的选择与转发逻辑始终留在 pool.Manager/adapter 边界之外。
func SetupRouter(manager *pool.Manager, tokenService *token.Service, eventService *events.Service, requestCounter *stats.RequestCounter) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.RequestCounterMiddleware(requestCounter))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "provider-pool-manager",
		})
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.TokenAuthMiddleware(tokenService))
	{
		setupPoolRoutes(apiGroup, manager)
		setupTokenRoutes(apiGroup, tokenService)

		statsHandler := handlers.NewStatsHandler(manager, requestCounter, eventService)
		apiGroup.GET("/stats", statsHandler.GetStats)
	}

	return router
}

func setupPoolRoutes(group *gin.RouterGroup, manager *pool.Manager) {
	handler := handlers.NewPoolHandler(manager)

	pools := group.Group("/pools")
	{
		pools.GET("", handler.ListFamilies)
		pools.GET("/:family", handler.GetFamilySnapshot)
		pools.POST("/:family/health-check", handler.PerformHealthChecks)
		pools.POST("/:family/entries/:uuid/disable", handler.Disable)
		pools.POST("/:family/entries/:uuid/enable", handler.Enable)
		pools.POST("/:family/entries/:uuid/reset-counters", handler.ResetCounters)
	}
}

func setupTokenRoutes(group *gin.RouterGroup, tokenService *token.Service) {
	handler := handlers.NewTokenHandler(tokenService)

	tokens := group.Group("/tokens")
	{
		tokens.POST("", handler.CreateToken)
		tokens.GET("", handler.ListTokens)
		tokens.GET("/:id", handler.GetToken)
		tokens.DELETE("/:id", handler.DeleteToken)
	}
}
