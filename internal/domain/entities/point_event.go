package entities

import "time"

const (
	EventAlarmRaised   = "ALARM_RAISED"
	EventAlarmCleared  = "ALARM_CLEARED"
	EventStateChange   = "STATE_CHANGE"
	EventCommandFailed = "COMMAND_FAILED"
	EventCommFailure   = "COMM_FAILURE"
	EventCommRestored  = "COMM_RESTORED"
)

// PointEvent - запись журнала событий по точке.
type PointEvent struct {
	ID            string    `gorm:"primaryKey;not null" json:"id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	PointName     string    `gorm:"not null" json:"point_name"`
	PointType     PointType `gorm:"not null" json:"point_type"`
	Address       uint16    `gorm:"not null" json:"address"`
	EventType     string    `gorm:"not null;index" json:"event_type"`
	Alarm         AlarmType `json:"alarm,omitempty"`
	PreviousValue uint16    `json:"previous_value"`
	Value         uint16    `json:"value"`
	Failures      int       `json:"failures,omitempty"`
	Message       string    `json:"message,omitempty"`
}
