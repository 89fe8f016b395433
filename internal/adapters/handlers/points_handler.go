package handlers

import (
	"net/http"
	"strconv"

	"github.com/iwtcode/tankRtu/internal/domain/entities"

	"github.com/gin-gonic/gin"
)

// GetPoints возвращает текущие значения всех точек.
// @Summary Получить точки
// @Description Возвращает снимок всех сконфигурированных точек RTU в порядке таблицы.
// @Tags Points
// @Produce json
// @Success 200 {object} models.PointsResponse "Список точек"
// @Router /points [get]
func (h *Handler) GetPoints(c *gin.Context) {
	points := h.usecase.GetPoints()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"count":  len(points),
		"points": points,
	})
}

// GetPoint возвращает одну точку по типу и адресу.
// @Summary Получить точку
// @Description Тип принимается полностью (ANALOG_OUTPUT) или кратко (AO).
// @Tags Points
// @Produce json
// @Param type path string true "Тип точки"
// @Param address path int true "Адрес точки"
// @Success 200 {object} models.PointResponse "Точка"
// @Failure 400 {object} models.ErrorResponse "Неверный тип или адрес"
// @Failure 404 {object} models.ErrorResponse "Точка не найдена"
// @Router /points/{type}/{address} [get]
func (h *Handler) GetPoint(c *gin.Context) {
	pointType, err := entities.ParsePointType(c.Param("type"))
	if err != nil {
		h.BadRequest(c, err, "Invalid point type")
		return
	}
	address, err := strconv.ParseUint(c.Param("address"), 10, 16)
	if err != nil {
		h.BadRequest(c, err, "Invalid point address")
		return
	}

	point, err := h.usecase.GetPoint(entities.PointIdentifier{Type: pointType, Address: uint16(address)})
	if err != nil {
		h.AppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "point": point})
}

// GetAlarms возвращает точки в аварийном состоянии.
// @Summary Получить аварии
// @Description Возвращает точки, для которых классификатор выдает значение, отличное от NO_ALARM.
// @Tags Points
// @Produce json
// @Success 200 {object} models.PointsResponse "Точки в аварии"
// @Router /alarms [get]
func (h *Handler) GetAlarms(c *gin.Context) {
	points := h.usecase.GetAlarms()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"count":  len(points),
		"points": points,
	})
}
