package models

import "time"

// Hospital is the read model the directory and capacity lookups are served from.
type Hospital struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	City            string     `json:"city"`
	Specializations StringList `gorm:"type:jsonb" json:"specializations"`
	TotalBeds       int        `gorm:"not null;default:0" json:"total_beds"`
	OccupiedBeds    int        `gorm:"not null;default:0" json:"occupied_beds"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OccupancyPercent is occupied beds over total beds, 0..100.
// A hospital that reports no beds is treated as full.
func (h *Hospital) OccupancyPercent() float64 {
	if h.TotalBeds <= 0 {
		return 100
	}
	p := float64(h.OccupiedBeds) / float64(h.TotalBeds) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
