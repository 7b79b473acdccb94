package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matsen/bibdedupe/internal/citation"
)

func TestMergeGroup(t *testing.T) {
	g := citation.DuplicateGroup{
		Unique: citation.Citation{
			ID:       "1",
			Title:    "Foo Bar Study",
			Keywords: []string{"genetics"},
			Source:   "PubMed",
		},
		Duplicates: []citation.Citation{
			{
				ID:          "2",
				Title:       "Foo bar study.",
				Authors:     []citation.Author{{FamilyName: "Smith", GivenName: "J."}},
				Year:        2020,
				Journal:     "Nature",
				DOI:         "10.1/x",
				Keywords:    []string{"genetics", "evolution"},
				ExtraFields: map[string][]string{"notes": {"first"}},
			},
			{
				ID:          "3",
				Journal:     "Science",
				Abstract:    "An abstract.",
				Year:        2021,
				ExtraFields: map[string][]string{"notes": {"first", "second"}},
			},
		},
	}

	merged := MergeGroup(g)

	assert.Equal(t, "1", merged.ID)
	assert.Equal(t, "Foo Bar Study", merged.Title)
	assert.Equal(t, "Nature", merged.Journal)
	assert.Equal(t, 2020, merged.Year)
	assert.Equal(t, "10.1/x", merged.DOI)
	assert.Equal(t, "An abstract.", merged.Abstract)
	assert.Equal(t, []citation.Author{{FamilyName: "Smith", GivenName: "J."}}, merged.Authors)
	assert.Equal(t, []string{"genetics", "evolution"}, merged.Keywords)
	assert.Equal(t, []string{"first", "second"}, merged.ExtraFields["notes"])
	assert.Equal(t, "PubMed", merged.Source)
}

func TestMergeGroup_DoesNotMutateGroup(t *testing.T) {
	g := citation.DuplicateGroup{
		Unique: citation.Citation{ID: "1", Keywords: []string{"a"}},
		Duplicates: []citation.Citation{
			{ID: "2", Keywords: []string{"b"}, ExtraFields: map[string][]string{"x": {"1"}}},
		},
	}

	merged := MergeGroup(g)
	merged.Keywords[0] = "changed"

	assert.Equal(t, []string{"a"}, g.Unique.Keywords)
	assert.Nil(t, g.Unique.ExtraFields)
	assert.Equal(t, []string{"1"}, g.Duplicates[0].ExtraFields["x"])
}

func TestUnionStrings(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []string
	}{
		{"both empty", nil, nil, nil},
		{"b empty", []string{"x"}, nil, []string{"x"}},
		{"a empty", nil, []string{"y", "y"}, []string{"y"}},
		{"overlap keeps order", []string{"x", "y"}, []string{"y", "z"}, []string{"x", "y", "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unionStrings(tt.a, tt.b))
		})
	}
}
