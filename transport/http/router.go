package http

import (
	"github.com/fanclash/gatekeeper/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/nonce", handlers.Challenge) // legacy path alias
		auth.POST("/verify", handlers.Verify)
		auth.POST("/introspect", handlers.Introspect)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(RequireAuth(authService))
	{
		api.GET("/me", handlers.Me)

		admin := api.Group("/admin")
		admin.Use(RequireAdmin())
		{
			admin.GET("/accounts", handlers.ListAccounts)
		}
	}

	return router
}
