package handlers

import (
	"net/http"

	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/interfaces"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"

	"github.com/gin-gonic/gin"
)

// Handler - структура для обработчиков HTTP-запросов
type Handler struct {
	usecase interfaces.Usecases
	logger  *logging.Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(usecase interfaces.Usecases, logger *logging.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger.WithPrefix("HANDLER"),
	}
}

// ProvideRouter настраивает и возвращает HTTP-роутер
func ProvideRouter(h *Handler, cfg *config.AppConfig) http.Handler {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// Logger Middleware
	router.Use(LoggingMiddleware(h.logger))

	// Группа API v1
	v1 := router.Group("/api/v1")
	{
		points := v1.Group("/points")
		{
			points.GET("", h.GetPoints)
			points.GET("/:type/:address", h.GetPoint)
		}

		v1.GET("/alarms", h.GetAlarms)
		v1.GET("/events", h.GetEvents)
		v1.GET("/status", h.GetStatus)
	}

	return router
}
