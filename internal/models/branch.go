package models

import "time"

type Branch struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	Timezone string `gorm:"size:50" json:"timezone"`

	// Booking policy applied uniformly to every staff member of the branch.
	MinBookingNoticeMin  int `gorm:"default:120" json:"min_booking_notice_min"`
	MaxBookingAheadDays  int `gorm:"default:60" json:"max_booking_ahead_days"`
	CancelationWindowMin int `gorm:"default:120" json:"cancelation_window_min"`
	BufferBeforeMin      int `gorm:"default:0" json:"buffer_before_min"`
	BufferAfterMin       int `gorm:"default:0" json:"buffer_after_min"`
	SlotGranularityMin   int `gorm:"default:15" json:"slot_granularity_min"`

	// When set, new bookings start as confirmed instead of pending.
	AutoConfirm bool `gorm:"default:false" json:"auto_confirm"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
