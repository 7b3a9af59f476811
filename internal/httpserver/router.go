package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, products Lister, timeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
			MaxAge:          12 * time.Hour,
		}),
		gzipResponses(),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/products", productsHandler(products, logger, timeout))

	return router
}
