package models

import (
	"time"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
)

// ErrorResponse представляет стандартный ответ с ошибкой.
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  struct {
		Code    int    `json:"code" example:"404"`
		Message string `json:"message" example:"Точка не найдена"`
	} `json:"error"`
}

// PointView - представление точки для API.
type PointView struct {
	ID        string             `json:"id" example:"ANALOG_OUTPUT:1000"`
	Name      string             `json:"name" example:"L"`
	Type      entities.PointType `json:"type" example:"ANALOG_OUTPUT"`
	Address   uint16             `json:"address" example:"1000"`
	Raw       uint16             `json:"raw" example:"10240"`
	EGU       float64            `json:"egu" example:"10240"`
	Alarm     entities.AlarmType `json:"alarm" example:"NO_ALARM"`
	Stale     bool               `json:"stale"`
	Failures  int                `json:"failures"`
	Timestamp time.Time          `json:"timestamp"`
}

// PointsResponse представляет ответ со списком точек.
type PointsResponse struct {
	Status string      `json:"status" example:"ok"`
	Count  int         `json:"count" example:"5"`
	Points []PointView `json:"points"`
}

// PointResponse представляет ответ с одной точкой.
type PointResponse struct {
	Status string    `json:"status" example:"ok"`
	Point  PointView `json:"point"`
}

// EventsResponse представляет ответ с последними событиями журнала.
type EventsResponse struct {
	Status string                `json:"status" example:"ok"`
	Count  int                   `json:"count" example:"2"`
	Events []entities.PointEvent `json:"events"`
}

// StatusView - состояние циклов и журнала.
type StatusView struct {
	RtuAddress    string                `json:"rtu_address" example:"127.0.0.1:1502"`
	PlantMode     string                `json:"plant_mode" example:"simulated"`
	Loops         []entities.LoopStatus `json:"loops"`
	StalePoints   int                   `json:"stale_points"`
	DroppedEvents uint64                `json:"dropped_events"`
}

// StatusResponse представляет ответ о состоянии сервиса.
type StatusResponse struct {
	Status string     `json:"status" example:"ok"`
	Info   StatusView `json:"info"`
}
