package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Recorder observes every request when set.
	Recorder RequestRecorder
}

// NewRouter builds the gin engine serving the handler.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// Global middleware (in order).
	router.Use(gin.Recovery())
	router.Use(requestContext())
	router.Use(requestLogger(opts.Recorder))

	router.GET("/server", h.ListServers)
	router.GET("/server/:name", h.GetServer)
	router.GET("/server/:name/start", h.StartServer)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "payload": "no such endpoint"})
	})

	return router
}
