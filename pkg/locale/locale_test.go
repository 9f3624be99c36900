package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry("ja")

	p, err := r.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "ja", p.ID)

	p, err = r.Lookup(" EN ")
	require.NoError(t, err)
	assert.Equal(t, "eng", p.OCRCode)

	_, err = r.Lookup("xx")
	assert.True(t, errors.Is(err, ErrUnknownLocale))
	assert.Equal(t, []string{"en", "ja"}, r.IDs())
}

func TestFieldNameFallback(t *testing.T) {
	p := Japanese()
	assert.Equal(t, "会心率", p.FieldName("cr"))
	assert.Equal(t, "nope", p.FieldName("nope"))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	body := `id: de
ocr_code: deu
name: Deutsch
fields:
  cr: KT
substitutions:
  - from: "O"
    to: "0"
  - from: "l"
    to: "1"
ignore: ["in"]
ignore_patterns:
  - "Basiswerte"
messages:
  favor_attack: "mehr ANG"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.yaml"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("skip"), 0o644))

	ps, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	p := ps[0]
	assert.Equal(t, "de", p.ID)
	assert.Equal(t, []Substitution{{From: "O", To: "0"}, {From: "l", To: "1"}}, p.Substitutions)
	assert.Equal(t, "KT", p.FieldName("cr"))
	assert.Equal(t, "mehr ANG", p.Messages.FavorAttack)

	r := NewRegistry("en")
	require.NoError(t, r.Register(p))
	got, err := r.Lookup("de")
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestMixedCaseIDResolves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: \" PT \"\nocr_code: por\n"), 0o644))
	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pt", p.ID)

	r := NewRegistry("PT")
	require.NoError(t, r.Register(p))
	for _, id := range []string{"PT", "pt", " Pt ", ""} {
		got, err := r.Lookup(id)
		require.NoError(t, err, id)
		assert.Same(t, p, got, id)
	}

	require.NoError(t, r.Register(&Profile{ID: "FR", OCRCode: "fra"}))
	got, err := r.Lookup("fr")
	require.NoError(t, err)
	assert.Equal(t, "fra", got.OCRCode)
	assert.Contains(t, r.IDs(), "fr")
}

func TestLoadFileRejectsMissingOCRCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("id: bad\n"), 0o644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}
