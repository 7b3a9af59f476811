package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goldcatalog/internal/catalog"
)

// Lister returns the priced catalog for a set of filters.
type Lister interface {
	List(ctx context.Context, f catalog.Filters) (catalog.Listing, error)
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server. requestTimeout bounds the work done for one /products call.
func New(addr string, logger *log.Logger, products Lister, requestTimeout time.Duration) *Server {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(logger, products, requestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{httpServer: httpSrv, logger: logger}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func productsHandler(products Lister, logger *log.Logger, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		listing, err := products.List(ctx, catalog.ParseFilters(c.Request.URL.Query()))
		if err != nil {
			logger.Printf("list products: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}
