package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/faycal55/respira/pkg/errors"
)

func TestDefault_EmbeddedCatalogIsValid(t *testing.T) {
	c := Default()

	techniques := c.Techniques()
	require.Len(t, techniques, 4)
	ids := make([]string, 0, len(techniques))
	for _, tech := range techniques {
		ids = append(ids, tech.ID)
	}
	assert.Equal(t, []string{"coherent", "box", "478", "extended"}, ids)

	assert.Len(t, c.Books(BookFilter{}), 10)
	assert.Len(t, c.Tracks(AllCategories), 12)
	assert.Len(t, c.Plans(), 2)
	assert.Len(t, c.Themes(), 10)
}

func TestTechnique(t *testing.T) {
	c := Default()

	box, err := c.Technique("box")
	require.NoError(t, err)
	assert.Equal(t, 240, box.TotalDuration)
	assert.Equal(t, 16, box.CycleLength())
	assert.True(t, box.Phases[0].IsInhale())
	assert.False(t, box.Phases[1].IsInhale())

	// Callers get a copy.
	box.Phases[0].Duration = 99
	again, err := c.Technique("box")
	require.NoError(t, err)
	assert.Equal(t, 4, again.Phases[0].Duration)

	_, err = c.Technique("missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestBooks_IDsAreSlugs(t *testing.T) {
	b, err := Default().Book("la-princesse-de-cleves")
	require.NoError(t, err)
	assert.Equal(t, "Madame de La Fayette", b.Author)
}

func TestBooks_Filter(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		filter BookFilter
		want   int
	}{
		{"all", BookFilter{Category: AllCategories}, 10},
		{"category", BookFilter{Category: "Solitude & Anxiété"}, 2},
		{"search author", BookFilter{Search: "maupassant"}, 2},
		{"search theme", BookFilter{Search: "SAGESSE"}, 2},
		{"category and search", BookFilter{Category: "Deuil & Résilience", Search: "hugo"}, 1},
		{"no match", BookFilter{Search: "tolkien"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Books(tt.filter)
			assert.Len(t, got, tt.want)
			assert.NotNil(t, got)
		})
	}
}

func TestCategories(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		AllCategories,
		"Deuil & Résilience",
		"Solitude & Anxiété",
		"Estime de soi & Sagesse",
		"Séparation & Relations",
	}, c.BookCategories())
	assert.Equal(t, []string{
		"Nature & Ambiances",
		"Détente & Méditation",
		"Ambiances Urbaines",
		"Autres Ambiances",
	}, c.TrackCategories())
	assert.Len(t, c.Tracks("Ambiances Urbaines"), 2)
}

func TestPlans(t *testing.T) {
	yearly, err := Default().Plan("yearly")
	require.NoError(t, err)
	assert.InDelta(t, 79.99, yearly.Price, 0.001)
	assert.True(t, yearly.Popular)
	assert.Contains(t, yearly.Features, "2 mois gratuits")
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate technique", "techniques:\n  - {id: a, total_duration: 10, phases: [{name: x, duration: 1}]}\n  - {id: a, total_duration: 10, phases: [{name: x, duration: 1}]}\n"},
		{"zero phase", "techniques:\n  - {id: a, total_duration: 10, phases: [{name: x, duration: 0}]}\n"},
		{"no phases", "techniques:\n  - {id: a, total_duration: 10}\n"},
		{"theme without id", "themes:\n  - {fr: Autre}\n"},
		{"not yaml", "techniques: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
