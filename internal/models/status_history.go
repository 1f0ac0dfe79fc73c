package models

import "time"

// StatusHistory is the append-only audit trail of appointment transitions.
// Rows are only ever inserted, in the same transaction as the status change.
type StatusHistory struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint `gorm:"index" json:"appointment_id"`

	FromStatus string `gorm:"size:20" json:"from_status"`
	ToStatus   string `gorm:"size:20;not null" json:"to_status"`

	Actor  string `gorm:"size:50" json:"actor"` // "client", "staff", "system"
	Reason string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
