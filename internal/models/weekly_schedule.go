package models

import "time"

// WeeklySchedule is one recurring availability window of a staff member.
// StartTime/EndTime are local wall-clock "15:04" strings; the branch
// timezone anchors them to a concrete day. A staff member may own several
// rows per weekday; overlapping rows are merged at query time.
type WeeklySchedule struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StaffID uint `gorm:"index" json:"staff_id"`

	Weekday int `json:"weekday"` // 0 = Sunday .. 6 = Saturday

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Active    bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
