// Package stats turns OCR text of a character stat sheet into a numeric
// stat record and scores it against the ideal allocation for the same
// investment.
package stats

import "math"

// Field identifies one stat of a Record.
type Field string

const (
	FieldAttack           Field = "atk"
	FieldAttackBase       Field = "atk_base"
	FieldAttackAdd        Field = "atk_add"
	FieldAttackAddRate    Field = "atk_add_rate"
	FieldCritRate         Field = "cr"
	FieldCritDamage       Field = "cd"
	FieldEnergyRecharge   Field = "er"
	FieldMastery          Field = "em"
	FieldMasteryAmplify   Field = "em_amplifying"
	FieldMasteryTransform Field = "em_transformative"
	FieldMasteryAbsorb    Field = "em_absorption"
)

// AllFields lists every Record field in display order.
var AllFields = []Field{
	FieldAttack,
	FieldAttackBase,
	FieldAttackAdd,
	FieldAttackAddRate,
	FieldCritRate,
	FieldCritDamage,
	FieldEnergyRecharge,
	FieldMastery,
	FieldMasteryAmplify,
	FieldMasteryTransform,
	FieldMasteryAbsorb,
}

// Record maps stat fields to values. Crit rate, crit damage, energy recharge
// and bonus attack rate are percentages (65.5 means 65.5%).
type Record map[Field]float64

// NewRecord returns a record with every field present and zero.
func NewRecord() Record {
	r := make(Record, len(AllFields))
	for _, f := range AllFields {
		r[f] = 0
	}
	return r
}

// Clone returns a copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// BuffSet holds additive deltas keyed by stat field.
type BuffSet map[Field]float64

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
