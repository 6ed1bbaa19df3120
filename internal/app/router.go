package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"taxipro/internal/handler"
	"taxipro/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler      *handler.BookingHandler
	TripHandler         *handler.TripHandler
	CancellationHandler *handler.CancellationHandler
	SharedLinkHandler   *handler.SharedLinkHandler
	WebhookHandler      *handler.WebhookHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Public routes: gateway callbacks and follow-along links carry
		// their own credentials (signature / token).
		v1.POST("/webhooks/payment", deps.WebhookHandler.HandlePaymentEvent)
		v1.GET("/shared/:token", deps.SharedLinkHandler.ViewLink)

		// Everything else requires a resolved actor.
		authed := v1.Group("")
		authed.Use(middleware.ActorMiddleware())
		{
			trips := authed.Group("/trips")
			{
				trips.POST("", deps.BookingHandler.RequestTrip)
				trips.GET("/:id", deps.TripHandler.GetTrip)
				trips.PATCH("/:id", deps.TripHandler.UpdateTrip)
				trips.POST("/:id/accept", deps.BookingHandler.AcceptTrip)
				trips.POST("/:id/arrived", deps.BookingHandler.DriverArrived)
				trips.POST("/:id/cancel", deps.CancellationHandler.CancelTrip)
				trips.POST("/:id/no-show", deps.CancellationHandler.MarkAsNoShow)
				trips.POST("/:id/rating", deps.TripHandler.RateTrip)
				trips.POST("/:id/messages", deps.TripHandler.SendMessage)
				trips.POST("/:id/safety-alert", deps.TripHandler.TriggerSafetyAlert)
				trips.POST("/:id/share", deps.SharedLinkHandler.CreateLink)
			}

			authed.DELETE("/shared/:token", deps.SharedLinkHandler.RevokeLink)
		}
	}

	return router
}
