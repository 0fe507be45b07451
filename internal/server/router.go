// Package server wires the HTTP surface: the REST routes for event
// aggregates, the long-poll and SSE notification routes, and the metrics
// endpoint.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChiriacCasian/eventorganizer/internal/middleware"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(handler *EventHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
	}))

	events := r.Group("/events")
	{
		events.GET("", handler.List)
		events.POST("", handler.Add)
		events.POST("/import", handler.Import)
		events.GET("/updates", handler.Updates)
		events.GET("/stream", handler.Stream)
		events.GET("/:code", handler.Get)
		events.PUT("/:code", handler.Update)
		events.DELETE("/:code", handler.Delete)
		events.GET("/:code/balances", handler.Balances)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
