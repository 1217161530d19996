package domain

import "time"

type HealthStatus struct {
	Database   bool      `json:"database"`
	Redis      bool      `json:"redis"`
	ServerTime time.Time `json:"server_time"`
}
