package stats

import "regexp"

// tokenRE accepts "+1,234", "65.5%", "850" and the like.
var tokenRE = regexp.MustCompile(`^(\+)?\d+([.,]\d{1,3})?%?$`)

// minTokenLine is the first line index that may hold a stat value. Earlier
// lines carry item level and rarity markers.
const minTokenLine = 20

func isToken(index int, normalized string) bool {
	return index >= minTokenLine && tokenRE.MatchString(normalized)
}

// Tokens returns the numeric tokens of lines in order.
func Tokens(lines []Line) []string {
	var out []string
	for _, l := range lines {
		if l.Token {
			out = append(out, l.Normalized)
		}
	}
	return out
}
