package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(RequestLogger())
	router.Use(CORS(allowedOrigins))

	// Health check
	router.GET("/health", handler.HealthCheck)

	router.GET("/analyze", handler.Analyze)
	router.GET("/tree", handler.GetTree)
	router.GET("/activity", handler.GetActivity)
	router.GET("/coverage", handler.GetCoverage)
	router.GET("/stats", handler.GetStats)
	router.GET("/issues", handler.GetIssues)
	router.GET("/pull-requests", handler.GetPullRequests)
	router.GET("/releases", handler.GetReleases)
	router.GET("/dependencies", handler.GetDependencies)
	router.GET("/topics", handler.GetTopics)

	api := router.Group("/api")
	{
		api.GET("/analyze", handler.Analyze)
	}

	return router
}
