package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physique-coach/internal/domain"
)

func TestDefaultCatalogShape(t *testing.T) {
	cat := DefaultCatalog()
	require.NoError(t, ValidateCatalog(cat))

	active := cat.ActiveCategories()
	require.Len(t, active, 22)
	assert.Equal(t, "cardiovascular_conditioning", active[0].ID)
	assert.Equal(t, "upper_back", active[len(active)-1].ID)
	require.Len(t, cat.Families, 3)
	assert.Contains(t, cat.Families[0].Exercises, "Hanging Leg Lifts")
}

func TestDefaultCatalogViewsAndPrompts(t *testing.T) {
	byID := map[string]domain.Category{}
	for _, c := range DefaultCatalog().Categories {
		byID[c.ID] = c
	}

	upper := byID["upper_chest"]
	require.Len(t, upper.Views, 2)
	assert.Equal(t, domain.ViewFront, upper.Views[0].View)
	assert.Equal(t, domain.ViewSide, upper.Views[1].View)
	assert.Equal(t, "estimate the muscle quality number of the upper chest on a scale from 0 to 10 for the person in the photo", upper.Views[0].Prompt)
	assert.Equal(t, "integrate these descriptions to estimate an overall muscle quality number of the upper chest on a scale from 0 to 10 for the person.", upper.FusionPrompt)

	neck := byID["neck_and_traps"]
	assert.Equal(t, "neck", neck.Label)
	require.Len(t, neck.Views, 3)
	assert.Equal(t, domain.ViewFront, neck.Views[1].View)
	assert.Equal(t, "estimate the muscle quality number of the neck on a scale from 0 to 10 for the person in the photo", neck.Views[1].Prompt)
	assert.Contains(t, neck.Views[0].Prompt, "neck and trapezius")
	assert.Contains(t, neck.Views[2].Prompt, "neck and trapezius")

	assert.Equal(t, "estimate a posture quality number on a scale from 0 to 10 for the person in the photo", byID["posture"].Views[0].Prompt)
	assert.Len(t, byID["left_right_symmetry"].Views, 2)
	assert.Len(t, byID["inner_chest"].Views, 1)
	assert.Len(t, byID["upper_back"].Views, 1)
	assert.True(t, byID["bodyfat"].Disabled)
	assert.True(t, byID["strengths_and_weaknesses"].Unrated)
}

func TestLoadCatalogEmptyPathReturnsDefault(t *testing.T) {
	cat, err := LoadCatalog("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), cat)
}

func TestLoadCatalogFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `
categories:
  - id: calves
    label: calves
    fusion_prompt: integrate these calf descriptions.
    views:
      - view: back
        prompt: rate the calves
      - view: side
        prompt: rate the calves
  - id: bodyfat
    label: bodyfat
    views:
      - view: front
        prompt: estimate the bodyfat percentage
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cat.Categories, 2)
	assert.Equal(t, domain.ViewBack, cat.Categories[0].Views[0].View)
	assert.Equal(t, "integrate these calf descriptions.", cat.Categories[0].FusionPrompt)
	assert.Equal(t, DefaultFamilies(), cat.Families)
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate id",
			yaml: `
categories:
  - {id: a, label: a, views: [{view: front, prompt: p}]}
  - {id: a, label: a, views: [{view: front, prompt: p}]}
`,
			want: "duplicate id",
		},
		{
			name: "invalid view",
			yaml: `
categories:
  - {id: a, label: a, views: [{view: top, prompt: p}]}
`,
			want: "invalid view",
		},
		{
			name: "multi view without fusion prompt",
			yaml: `
categories:
  - {id: a, label: a, views: [{view: front, prompt: p}, {view: back, prompt: p}]}
`,
			want: "missing fusion_prompt",
		},
		{
			name: "all disabled",
			yaml: `
categories:
  - {id: a, label: a, disabled: true, views: [{view: front, prompt: p}]}
`,
			want: "no enabled categories",
		},
		{
			name: "empty family",
			yaml: `
families:
  - {name: rows, exercises: []}
`,
			want: "no exercises",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
