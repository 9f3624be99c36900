package models

import (
	"time"

	"statrater/pkg/stats"
)

// Rating is one scored status screenshot.
type Rating struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Source    string `gorm:"size:512"` // file name or url
	Locale    string `gorm:"size:16;not null"`
	Buffs     string `gorm:"size:512"`

	AttackBase   float64
	AttackAdd    float64
	Attack       float64
	AttackRate   float64
	CritRate     float64
	CritDamage   float64
	Recharge     float64
	Mastery      float64
	Score        float64 `gorm:"index"`
	StatRate     float64
	DamageDiff   float64
	IdealAttack  int64
	IdealCrit    float64
	IdealCritDmg float64
	Guidance     string `gorm:"size:32"`
}

// NewRating copies the stats of a successful report into a Rating.
func NewRating(userID uint, source, loc string, rep stats.Report) Rating {
	rec, res := rep.Record, rep.Result
	return Rating{
		UserID:       userID,
		Source:       source,
		Locale:       loc,
		Buffs:        stats.FormatBuffs(rep.Applied),
		AttackBase:   rec[stats.FieldAttackBase],
		AttackAdd:    rec[stats.FieldAttackAdd],
		Attack:       rec[stats.FieldAttack],
		AttackRate:   rec[stats.FieldAttackAddRate],
		CritRate:     rec[stats.FieldCritRate],
		CritDamage:   rec[stats.FieldCritDamage],
		Recharge:     rec[stats.FieldEnergyRecharge],
		Mastery:      rec[stats.FieldMastery],
		Score:        res.Score,
		StatRate:     res.StatRate,
		DamageDiff:   res.DamageDiffRate,
		IdealAttack:  res.IdealAttack,
		IdealCrit:    res.IdealCritRate,
		IdealCritDmg: res.IdealCritDamage,
		Guidance:     res.GuidanceCode,
	}
}
