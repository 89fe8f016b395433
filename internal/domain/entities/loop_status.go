package entities

import "time"

// LoopStatus - наблюдаемое состояние управляющего цикла.
type LoopStatus struct {
	Name      string    `json:"name"`
	Running   bool      `json:"running"`
	Cycles    uint64    `json:"cycles"`
	LastCycle time.Time `json:"last_cycle"`
	LastError string    `json:"last_error,omitempty"`
}
