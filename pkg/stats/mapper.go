package stats

import (
	"strconv"
	"strings"
)

type coerceFunc func(token string) (float64, error)

// integer strips the given characters and parses what is left as an int.
func integer(strip ...string) coerceFunc {
	return func(tok string) (float64, error) {
		for _, s := range strip {
			tok = strings.ReplaceAll(tok, s, "")
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
}

func percent(tok string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(tok, "%"), 64)
}

// coercers is the per-field parse table, in mapping order.
var coercers = []struct {
	field    Field
	coerce   coerceFunc
	optional bool
}{
	{FieldAttackBase, integer(","), false},
	{FieldAttackAdd, integer(",", "+"), false},
	{FieldCritRate, percent, false},
	{FieldCritDamage, percent, false},
	{FieldEnergyRecharge, percent, false},
	{FieldMastery, integer(","), true},
}

// MapTokens reads every layout field from tokens. Optional fields whose
// position is out of range are zero; any other miss is a *ParseError
// wrapping ErrLayoutMismatch.
func MapTokens(tokens []string, layout Layout) (Record, error) {
	rec := NewRecord()
	for _, c := range coercers {
		pos, ok := layout[c.field]
		if !ok || pos < 0 || pos >= len(tokens) {
			if c.optional {
				continue
			}
			return nil, &ParseError{Field: c.field, Position: pos, Tokens: len(tokens), Err: ErrLayoutMismatch}
		}
		v, err := c.coerce(tokens[pos])
		if err != nil {
			return nil, &ParseError{Field: c.field, Position: pos, Tokens: len(tokens), Token: tokens[pos], Err: ErrCoercion}
		}
		rec[c.field] = v
	}
	return rec, nil
}
