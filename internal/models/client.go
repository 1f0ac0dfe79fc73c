package models

import "time"

// Client is a booking contact, no login, scoped to one branch. The phone
// number is the dedup key within a branch.
type Client struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BranchID uint `gorm:"uniqueIndex:idx_clients_branch_phone" json:"branch_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;uniqueIndex:idx_clients_branch_phone" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
