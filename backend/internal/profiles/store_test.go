package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogueJSON = `{
  "ルフィ": {"性別": "男性", "年齢": "19", "職業": "海賊", "趣味": "冒険", "性格": "天真爛漫"},
  "ナルト": {"性別": "男性", "年齢": "17", "職業": "忍者", "趣味": "ラーメン", "性格": "負けず嫌い"}
}`

const catalogueYAML = `
ガチャピン:
  性別: 不明
  年齢: "5"
  職業: 恐竜の子供
  趣味: スポーツ
  性格: 挑戦好き
`

func TestParse_JSON(t *testing.T) {
	store, err := Parse([]byte(catalogueJSON))
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"ナルト", "ルフィ"}, store.Names())

	p, ok := store.Get("ルフィ")
	require.True(t, ok)
	assert.Equal(t, "海賊", p.Occupation)
	assert.Equal(t, "天真爛漫", p.Personality)
}

func TestParse_YAML(t *testing.T) {
	store, err := Parse([]byte(catalogueYAML))
	require.NoError(t, err)

	p, ok := store.Get("ガチャピン")
	require.True(t, ok)
	assert.Equal(t, "5", p.Age)
	assert.Equal(t, "スポーツ", p.Hobby)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[1, 2`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "character_profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogueJSON), 0o600))

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSelect_UnresolvedGetsEmptyProfile(t *testing.T) {
	store, err := Parse([]byte(catalogueJSON))
	require.NoError(t, err)

	selected, unresolved := store.Select([]string{"ルフィ", "謎の人物"})
	assert.Len(t, selected, 2)
	assert.Equal(t, "海賊", selected["ルフィ"].Occupation)
	assert.True(t, selected["謎の人物"].IsEmpty())
	assert.Equal(t, []string{"謎の人物"}, unresolved)
}
