package models

import "time"

// Preset is a named set of buff flags a user applies when rating, such as
// a support character's attack share.
type Preset struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_preset"`
	Name      string `gorm:"size:64;not null;uniqueIndex:idx_user_preset"`
	// Buffs holds flags in the "atk=1200 cr=20%" form.
	Buffs string `gorm:"size:512;not null"`
}
