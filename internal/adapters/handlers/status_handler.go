package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 1000
)

// GetEvents возвращает последние события журнала.
// @Summary Получить события
// @Description Возвращает последние события журнала, начиная с самого нового.
// @Tags Journal
// @Produce json
// @Param limit query int false "Количество событий (по умолчанию 50, не более 1000)"
// @Success 200 {object} models.EventsResponse "События"
// @Failure 400 {object} models.ErrorResponse "Неверный limit"
// @Failure 500 {object} models.ErrorResponse "Ошибка чтения журнала"
// @Router /events [get]
func (h *Handler) GetEvents(c *gin.Context) {
	limit := defaultEventsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.BadRequest(c, err, "Invalid limit")
			return
		}
		limit = min(n, maxEventsLimit)
	}

	events, err := h.usecase.GetEvents(limit)
	if err != nil {
		h.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"count":  len(events),
		"events": events,
	})
}

// GetStatus возвращает состояние циклов управления.
// @Summary Состояние сервиса
// @Tags Status
// @Produce json
// @Success 200 {object} models.StatusResponse "Состояние"
// @Router /status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "info": h.usecase.GetStatus()})
}
