package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// buffRules maps a buff key to the record field it is added into.
var buffRules = map[Field]struct {
	target Field
	coerce func(float64) float64
}{
	FieldAttack:        {FieldAttackAdd, math.Trunc},
	FieldAttackAddRate: {FieldAttackAddRate, nil},
	FieldCritRate:      {FieldCritRate, nil},
	FieldCritDamage:    {FieldCritDamage, nil},
}

// buffAliases are the names accepted in <stat>=<value> flags.
var buffAliases = map[string]Field{
	"atk":          FieldAttack,
	"atk%":         FieldAttackAddRate,
	"atk_add_rate": FieldAttackAddRate,
	"cr":           FieldCritRate,
	"cd":           FieldCritDamage,
}

// mergeBuffs adds supported buffs into rec and returns what was applied,
// keyed by target field. Unsupported keys are ignored.
func mergeBuffs(rec Record, buffs BuffSet) BuffSet {
	applied := BuffSet{}
	for k, v := range buffs {
		rule, ok := buffRules[k]
		if !ok {
			continue
		}
		if rule.coerce != nil {
			v = rule.coerce(v)
		}
		rec[rule.target] += v
		applied[rule.target] += v
	}
	return applied
}

// ApplyBuffs returns a copy of rec with buffs merged in, and the amounts
// applied. Total attack and bonus attack rate are kept consistent with the
// new bonus attack when base attack is known.
func ApplyBuffs(rec Record, buffs BuffSet) (Record, BuffSet) {
	out := rec.Clone()
	applied := mergeBuffs(out, buffs)
	if base := out[FieldAttackBase]; base != 0 {
		if add, ok := applied[FieldAttackAdd]; ok {
			out[FieldAttack] = base + out[FieldAttackAdd]
			out[FieldAttackAddRate] += 100 * add / base
		}
		out[FieldAttackAddRate] = round(out[FieldAttackAddRate], 1)
	}
	return out, applied
}

// ParseBuffs reads whitespace separated <stat>=<value> flags such as
// "atk=1200 cr=20.5%". Unknown stat names are kept and later ignored.
func ParseBuffs(s string) (BuffSet, error) {
	out := BuffSet{}
	for _, part := range strings.Fields(s) {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadBuff, part)
		}
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadBuff, part)
		}
		f, ok := buffAliases[strings.ToLower(k)]
		if !ok {
			f = Field(strings.ToLower(k))
		}
		out[f] += n
	}
	return out, nil
}

// FormatBuffs renders b as sorted flags accepted by ParseBuffs. Applied
// sets (keyed by target field) format to the flags that re-apply them.
func FormatBuffs(b BuffSet) string {
	sums := make(map[string]float64, len(b))
	for f, v := range b {
		name := string(f)
		switch f {
		case FieldAttackAdd:
			name = "atk"
		case FieldAttackAddRate:
			name = "atk%"
		}
		sums[name] += v
	}
	names := make([]string, 0, len(sums))
	for n := range sums {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+"="+strconv.FormatFloat(sums[n], 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}
