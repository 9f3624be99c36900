package stats

import (
	"statrater/pkg/locale"
)

// Sheet is the scanned form of one OCR text.
type Sheet struct {
	Lines  []Line   `json:"lines"`
	Tokens []string `json:"tokens"`
	Layout Layout   `json:"layout"`
}

// LineCount is the number of non-empty lines the layout was resolved from.
func (s Sheet) LineCount() int { return len(s.Lines) }

// Scan normalizes text, resolves its layout and collects numeric tokens.
func (p *Parser) Scan(text string) Sheet {
	lines := p.Lines(text)
	return Sheet{
		Lines:  lines,
		Tokens: Tokens(lines),
		Layout: p.resolver.Resolve(len(lines)),
	}
}

// Extract reads a stat record from text, derived stats included.
func (p *Parser) Extract(text string) (Record, error) {
	sheet := p.Scan(text)
	rec, err := MapTokens(sheet.Tokens, sheet.Layout)
	if err != nil {
		return nil, err
	}
	if err := Derive(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Report is the full outcome of rating one sheet.
type Report struct {
	Sheet   Sheet   `json:"sheet"`
	Record  Record  `json:"record"`
	Applied BuffSet `json:"applied_buffs"`
	Result  Result  `json:"result"`
}

// Rate runs extraction, buffs, derived stats and scoring on text. On a
// parse failure the returned report still carries the scanned sheet.
func (p *Parser) Rate(text string, buffs BuffSet) (Report, error) {
	rep := Report{Sheet: p.Scan(text)}
	rec, err := MapTokens(rep.Sheet.Tokens, rep.Sheet.Layout)
	if err != nil {
		return rep, err
	}
	rep.Applied = mergeBuffs(rec, buffs)
	if err := Derive(rec); err != nil {
		return rep, err
	}
	rep.Record = rec
	res, err := Score(rec)
	if err != nil {
		return rep, err
	}
	res.Message = res.Guidance.Message(p.loc)
	rep.Result = res
	return rep, nil
}

// Extract is a convenience for NewParser(loc).Extract(text).
func Extract(text string, loc *locale.Profile) (Record, error) {
	p, err := NewParser(loc)
	if err != nil {
		return nil, err
	}
	return p.Extract(text)
}

// Rate is a convenience for NewParser(loc).Rate(text, buffs).
func Rate(text string, loc *locale.Profile, buffs BuffSet) (Report, error) {
	p, err := NewParser(loc)
	if err != nil {
		return Report{}, err
	}
	return p.Rate(text, buffs)
}
