// internal/delivery/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fx-sentiment-bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Server HTTP сервер на gin
type Server struct {
	httpServer *http.Server
}

// NewRouter создает gin.Engine с восстановлением после паники и логированием запросов
func NewRouter(handler *HTTPHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	handler.RegisterRoutes(router)
	return router
}

// NewServer создает сервер на порту port
func NewServer(port int, handler *HTTPHandler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
	}
}

// Start запускает сервер в фоне
func (s *Server) Start() {
	go func() {
		logger.Info("🌐 HTTP сервер слушает %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ HTTP сервер: %v", err)
		}
	}()
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("🌐 %s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
