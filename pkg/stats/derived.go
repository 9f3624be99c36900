package stats

// Derive fills total attack, bonus attack rate and the elemental mastery
// effects of rec in place. Any bonus attack rate already present (from
// buffs) is kept and the equipment share is added on top.
func Derive(rec Record) error {
	base := rec[FieldAttackBase]
	if base == 0 {
		return ErrDivisionPrecondition
	}
	rec[FieldAttack] = base + rec[FieldAttackAdd]
	rec[FieldAttackAddRate] = round(rec[FieldAttackAddRate]+100*rec[FieldAttackAdd]/base, 1)

	amp, trans, absorb := MasteryEffects(rec[FieldMastery])
	rec[FieldMasteryAmplify] = amp
	rec[FieldMasteryTransform] = trans
	rec[FieldMasteryAbsorb] = absorb
	return nil
}

// MasteryEffects returns the amplifying, transformative and absorption
// bonuses, in percent, granted by em elemental mastery.
func MasteryEffects(em float64) (amp, trans, absorb float64) {
	if em <= 0 {
		return 0, 0, 0
	}
	amp = round(25*em/(9*(em+1400)), 3)
	trans = round(16*em/(em+2000), 3)
	absorb = round(40*em/(9*(em+1400)), 3)
	return amp, trans, absorb
}
