package stats

import (
	"math"

	"statrater/pkg/locale"
)

// Attack rate : crit rate : crit damage are assumed to grow at 1.5 : 1 : 2.
const (
	lowStatRate        = 2.45
	idealAttackRate    = 1.2
	balancedAttackRate = 1.3
	referenceCritRate  = 0.7
	referenceCritDmg   = 1.4
	minCritRate        = 0.05
	minCritDamage      = 0.5
	statRateOffset     = 4.5
)

// Guidance is the allocation advice derived from the actual attack rate.
type Guidance int

const (
	GuidanceFavorAttack Guidance = iota
	GuidanceAttackBalanced
	GuidanceFavorCrit
)

func (g Guidance) String() string {
	switch g {
	case GuidanceFavorAttack:
		return "favor_attack"
	case GuidanceAttackBalanced:
		return "attack_balanced"
	case GuidanceFavorCrit:
		return "favor_crit"
	}
	return "unknown"
}

// Message returns the advice in the language of loc, or in English when
// loc is nil or lacks the text.
func (g Guidance) Message(loc *locale.Profile) string {
	var m, fallback locale.Messages
	fallback = locale.English().Messages
	if loc != nil {
		m = loc.Messages
	}
	pick := func(s, def string) string {
		if s != "" {
			return s
		}
		return def
	}
	switch g {
	case GuidanceFavorAttack:
		return pick(m.FavorAttack, fallback.FavorAttack)
	case GuidanceAttackBalanced:
		return pick(m.AttackBalanced, fallback.AttackBalanced)
	default:
		return pick(m.FavorCrit, fallback.FavorCrit)
	}
}

// Result is the outcome of Score.
type Result struct {
	Score               float64  `json:"score"`
	StatRate            float64  `json:"stat_rate"`
	AttackRate          float64  `json:"atk_add_rate"`
	IdealAttack         int64    `json:"ideal_atk_add"`
	IdealAttackRate     float64  `json:"ideal_atk_add_rate"`
	IdealCritRate       float64  `json:"ideal_cr"`
	IdealCritDamage     float64  `json:"ideal_cd"`
	ExpectedDamage      int64    `json:"exp_dmg"`
	IdealExpectedDamage int64    `json:"ideal_exp_dmg"`
	DamageDiffRate      float64  `json:"dmg_diff_rate"`
	Guidance            Guidance `json:"-"`
	GuidanceCode        string   `json:"guidance"`
	Message             string   `json:"message"`
}

// Damage is the expected damage of an attack with attack rate r and crit
// rate / crit damage as fractions.
func Damage(base, r, cr, cd float64) float64 {
	return base * (1 + r) * (1 + math.Min(cr, 1)*cd)
}

// AdjustCritOverflow caps crit rate at 100% and folds the excess into crit
// damage at twice its value.
func AdjustCritOverflow(cr, cd float64) (float64, float64) {
	if cr > 1 {
		cd += 2 * (cr - 1)
		cr = 1
	}
	return cr, cd
}

// StatRate is the aggregate substat investment of an allocation.
func StatRate(r, cr, cd float64) float64 {
	return (1+r)/1.5 + cr + cd/2
}

// IdealAllocation returns the attack rate, crit rate and crit damage that
// maximise damage for the investment of (r, cr, cd).
func IdealAllocation(r, cr, cd float64) (ir, icr, icd float64) {
	ir, icr, icd = idealAttackRate, referenceCritRate, referenceCritDmg
	s := StatRate(r, cr, cd)

	if s >= lowStatRate {
		q := math.Sqrt(s*s - 6)
		ir = 1.5*(2*s-q)/3 - 1
		icr = math.Max(minCritRate, (s+q)/6)
		icd = 2 * icr
		icr, icd = AdjustCritOverflow(icr, icd)
		return ir, icr, icd
	}
	if r >= idealAttackRate && r <= balancedAttackRate {
		return r, icr, icd
	}
	// Move crit investment towards attack (or back) by the attack gap.
	diff := (idealAttackRate - r) / 3
	icr = math.Max(minCritRate, cr-diff)
	icd = math.Max(minCritDamage, cd-2*diff)
	icr, icd = AdjustCritOverflow(icr, icd)
	return ir, icr, icd
}

func guidanceFor(r float64) Guidance {
	switch {
	case r < idealAttackRate:
		return GuidanceFavorAttack
	case r <= balancedAttackRate:
		return GuidanceAttackBalanced
	default:
		return GuidanceFavorCrit
	}
}

// diffScore converts the damage gap in percentage points into score points.
func diffScore(d float64) float64 {
	switch {
	case d > 0 && d <= 5:
		return 2.5 * d
	case d > 5 && d <= 10:
		return 3 * d
	default:
		return 5 * d
	}
}

// Score rates rec against the ideal allocation of the same investment.
// It reads base attack, bonus attack, crit rate and crit damage.
func Score(rec Record) (Result, error) {
	base := rec[FieldAttackBase]
	if base == 0 {
		return Result{}, ErrDivisionPrecondition
	}
	r := rec[FieldAttackAdd] / base
	cr := rec[FieldCritRate] / 100
	cd := rec[FieldCritDamage] / 100

	s := StatRate(r, cr, cd)
	ir, icr, icd := IdealAllocation(r, cr, cd)

	dmg := Damage(base, r, cr, cd)
	ideal := Damage(base, ir, icr, icd)
	diffRate := dmg/ideal - 1

	score := 100 + diffScore(round(diffRate*100, 1)) + round(s, 1) - statRateOffset

	g := guidanceFor(r)
	idealAtk := math.Round(base * ir)
	return Result{
		Score:               score,
		StatRate:            s,
		AttackRate:          r,
		IdealAttack:         int64(idealAtk),
		IdealAttackRate:     round(idealAtk/base, 3),
		IdealCritRate:       icr,
		IdealCritDamage:     icd,
		ExpectedDamage:      int64(math.Round(dmg)),
		IdealExpectedDamage: int64(math.Round(ideal)),
		DamageDiffRate:      diffRate,
		Guidance:            g,
		GuidanceCode:        g.String(),
		Message:             g.Message(nil),
	}, nil
}
