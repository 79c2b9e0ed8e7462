package card

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, dir, filename string) {
	t.Helper()
	content := `{
		"cards": [
			{
				"gempId": "1_249",
				"front": {
					"title": "Boba Fett",
					"type": "Character",
					"subType": "",
					"power": "",
					"ability": "3",
					"deploy": "5",
					"forfeit": "6",
					"icons": ["Warrior"],
					"characteristics": ["Bounty Hunter"],
					"gametext": "While this weapon is on table, add 1 to its forfeit."
				}
			},
			{
				"gempId": "1_missing_front"
			},
			{
				"gempId": "",
				"front": {"title": "Skipped"}
			}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644))
}

func TestRegistryLoad(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir, "Dark.json")
	writeCorpus(t, dir, "Light.json")

	reg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	c := reg.Get("1_249")
	require.NotNil(t, c)
	assert.Equal(t, "Boba Fett", c.Title)
	assert.Equal(t, 3, c.Ability())
	assert.Equal(t, 0, c.Power())
	assert.True(t, c.IsWarrior())
	assert.True(t, c.ProvidesPresence())
}

func TestRegistryGetMiss(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir, "Dark.json")

	reg, err := Load(dir)
	require.NoError(t, err)

	assert.Nil(t, reg.Get("nonexistent"))
	assert.Equal(t, "nonexistent", reg.Title("nonexistent"))
}

func TestRegistryLoadNoCorpus(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestRegistryLoadSkipsOneMalformedCardKeepsTheRest(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"cards": [
			{
				"gempId": "1_1",
				"front": {"title": "Good Card", "type": "Character", "lightSideIcons": 2, "darkSideIcons": 2}
			},
			{
				"gempId": "1_2",
				"front": {"title": "Bad Card", "power": ["not", "a", "string"]}
			},
			{
				"gempId": "1_3",
				"front": {"title": "Another Good Card", "type": "Starship"}
			}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dark.json"), []byte(content), 0o644))

	reg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.NotNil(t, reg.Get("1_1"))
	assert.Nil(t, reg.Get("1_2"))
	assert.NotNil(t, reg.Get("1_3"))
}
