package rating

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statrater/pkg/config"
	"statrater/pkg/locale"
	"statrater/pkg/ocr"
	"statrater/pkg/stats"
)

type fakeOCR struct {
	text  string
	err   error
	langs []string
}

func (f *fakeOCR) Recognize(_ context.Context, _, lang string) (string, error) {
	f.langs = append(f.langs, lang)
	return f.text, f.err
}

// sheet is a 35 line status dump in the shifted layout.
func sheet() string {
	lines := make([]string, 0, 35)
	for len(lines) < 20 {
		lines = append(lines, "Artifact")
	}
	lines = append(lines,
		"19,888", "1,000", "812", "850", "70.0%", "140.0%", "180.2%", "0%",
		"25.0%", "110.5%", "46.6%", "0%", "+4,561", "+1,200", "+299",
	)
	return strings.Join(lines, "\n")
}

func TestServiceText(t *testing.T) {
	svc := New(locale.NewRegistry("ja"), nil)
	out, err := svc.Text("", sheet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ja", out.Locale.ID)
	assert.Equal(t, 2200.0, out.Report.Record[stats.FieldAttack])
	assert.InDelta(t, 97.9, out.Report.Result.Score, 0.1)
	assert.Equal(t, "攻撃力は適正なのでそのまま会心系を上げましょう", out.Report.Result.Message)
}

func TestServiceImageUsesLocaleOCRCode(t *testing.T) {
	rec := &fakeOCR{text: sheet()}
	svc := New(locale.NewRegistry("ja"), rec)
	out, err := svc.Image(context.Background(), "EN", "shot.png", stats.BuffSet{stats.FieldCritRate: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"eng"}, rec.langs)
	assert.Equal(t, 75.0, out.Report.Record[stats.FieldCritRate])
	assert.Equal(t, sheet(), out.Text)
}

func TestServiceImageErrors(t *testing.T) {
	svc := New(locale.NewRegistry("ja"), nil)
	out, err := svc.Image(context.Background(), "en", "x.png", nil)
	assert.ErrorIs(t, err, ErrNoRecognizer)
	assert.Equal(t, "en", out.Locale.ID)

	up := &ocr.UpstreamError{Messages: []string{"quota exceeded"}}
	svc = New(locale.NewRegistry("ja"), &fakeOCR{err: up})
	out, err = svc.Image(context.Background(), "ja", "x.png", nil)
	require.Error(t, err)
	assert.Equal(t, "エラー: quota exceeded", Message(err, out.Locale))

	_, err = svc.Text("xx", sheet(), nil)
	assert.True(t, errors.Is(err, locale.ErrUnknownLocale))
}

func TestServiceCachesParsers(t *testing.T) {
	svc := New(locale.NewRegistry("ja"), nil)
	a, err := svc.Parser("ja")
	require.NoError(t, err)
	b, err := svc.Parser("")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestBuffs(t *testing.T) {
	b, err := Buffs("atk=1000 cr=10", "", "cr=5%")
	require.NoError(t, err)
	assert.Equal(t, stats.BuffSet{stats.FieldAttack: 1000, stats.FieldCritRate: 15}, b)

	_, err = Buffs("atk=1000", "oops")
	assert.ErrorIs(t, err, stats.ErrBadBuff)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil, nil))
	assert.Equal(t, "Error: OCR failed with unknown error", Message(ocr.ErrNoText, locale.English()))
	assert.Equal(t, stats.ErrDivisionPrecondition.Error(), Message(stats.ErrDivisionPrecondition, locale.English()))
}

func TestFromConfig(t *testing.T) {
	svc, err := FromConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "ja"}, svc.Locales().IDs())

	cfg := config.Default()
	cfg.DefaultLocale = "xx"
	_, err = FromConfig(cfg)
	assert.ErrorIs(t, err, locale.ErrUnknownLocale)

	cfg = config.Default()
	cfg.LocaleDir = filepath.Join(t.TempDir(), "missing")
	_, err = FromConfig(cfg)
	assert.Error(t, err)
}
