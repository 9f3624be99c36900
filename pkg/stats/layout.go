package stats

// absentPosition marks a field the layout does not render.
const absentPosition = 99

// Layout maps a stat field to its index in the numeric token sequence.
type Layout map[Field]int

// LayoutResolver picks the layout for a sheet.
type LayoutResolver interface {
	Resolve(lineCount int) Layout
}

// LineCountResolver selects the layout from the number of non-empty lines.
// Optional caption lines shift every later field by a fixed offset, and only
// the offsets below have been observed.
type LineCountResolver struct{}

var (
	defaultLayout = Layout{
		FieldAttackBase:     1,
		FieldAttackAdd:      13,
		FieldCritRate:       4,
		FieldCritDamage:     5,
		FieldEnergyRecharge: 8,
		FieldMastery:        3,
	}
	shiftedLayout = Layout{
		FieldAttackBase:     1,
		FieldAttackAdd:      13,
		FieldCritRate:       5,
		FieldCritDamage:     6,
		FieldEnergyRecharge: 9,
		FieldMastery:        3,
	}
	noMasteryLayout = Layout{
		FieldAttackBase:     1,
		FieldAttackAdd:      12,
		FieldCritRate:       4,
		FieldCritDamage:     5,
		FieldEnergyRecharge: 8,
		FieldMastery:        absentPosition,
	}
)

// Resolve returns a copy, callers may modify it.
func (LineCountResolver) Resolve(lineCount int) Layout {
	src := defaultLayout
	switch lineCount {
	case 35, 36:
		src = shiftedLayout
	case 34:
		src = noMasteryLayout
	}
	out := make(Layout, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
