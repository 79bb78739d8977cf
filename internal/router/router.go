package router

import (
	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/handlers"
	"github.com/imyashkale/mcpdashboard/internal/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Servers *handlers.ServerHandler
	Chat    *handlers.ChatHandler
	Catalog *handlers.CatalogHandler
	Remote  *handlers.RemoteHandler
}

// Setup configures and returns the application router.
// auth is nil when authentication is disabled.
func Setup(h Handlers, auth *middleware.Auth0Config) *gin.Engine {

	// Create a new Gin router
	router := gin.Default()

	// Apply CORS middleware globally
	router.Use(middleware.CORS())

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Health check stays reachable without a token
	v1.GET("/health", h.Health.Check)

	api := v1.Group("")
	if auth != nil {
		api.Use(middleware.AuthenticationWithAuth0(auth))
	}

	// Session state
	api.GET("/state", h.Session.State)
	api.GET("/events", h.Session.Events)
	api.POST("/credential", h.Session.SetCredential)
	api.DELETE("/credential", h.Session.ResetCredential)
	api.PATCH("/settings", h.Session.UpdateSettings)

	// Server routes
	servers := api.Group("/servers")
	{
		servers.GET("", h.Servers.List)
		servers.POST("", h.Servers.Create)
		servers.PUT("/active", h.Servers.SetActive)
		servers.DELETE("/:id", h.Servers.Delete)
		servers.POST("/:id/connect", h.Servers.Connect)
		servers.POST("/:id/disconnect", h.Servers.Disconnect)
	}

	// Chat routes
	messages := api.Group("/messages")
	{
		messages.GET("", h.Chat.List)
		messages.POST("", h.Chat.Send)
		messages.DELETE("", h.Chat.Clear)
	}

	api.GET("/catalog", h.Catalog.List)

	// Backend listings
	remote := api.Group("/remote")
	{
		remote.GET("/servers", h.Remote.Servers)
		remote.GET("/tools", h.Remote.Tools)
	}

	return router
}
