package domain

import (
	"fmt"
	"time"
)

// Reading is one parsed telemetry record from the flood barrier controller.
type Reading struct {
	RainMM  int    `json:"rain_mm"`
	Level   string `json:"level"`
	ServoOn bool   `json:"servo"`
}

func (r Reading) String() string {
	return fmt.Sprintf("rain=%dmm level=%s servo=%s", r.RainMM, r.Level, ServoLabel(r.ServoOn))
}

// Row is a persisted reading as returned by the store, one field per column.
type Row struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"ts"`
	RainMM     int       `json:"rain_mm"`
	Level      string    `json:"level"`
	ServoOn    bool      `json:"servo"`
}

// Reading drops the store-assigned columns.
func (r Row) Reading() Reading {
	return Reading{RainMM: r.RainMM, Level: r.Level, ServoOn: r.ServoOn}
}

// ServoLabel renders the servo state the way operators read it on the panel.
func ServoLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
