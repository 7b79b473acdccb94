package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibdedupe/internal/citation"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testCitations() []citation.Citation {
	return []citation.Citation{
		{
			ID:      "1",
			Title:   "Machine Learning in Biology",
			Authors: []citation.Author{{FamilyName: "Smith", GivenName: "John"}},
			Journal: "Nature",
			Year:    2020,
			DOI:     "10.1234/smith",
			Source:  "PubMed",
		},
		{
			ID:      "2",
			Title:   "Deep Learning for Protein Structure",
			Authors: []citation.Author{{FamilyName: "Jones", GivenName: "Alice"}},
			Journal: "Science",
		},
		{
			ID:    "3",
			Title: "Statistical Methods in Genomics",
			Authors: []citation.Author{
				{FamilyName: "Brown", GivenName: "Bob"},
				{FamilyName: "White"},
			},
			Year: 2024,
		},
	}
}

func TestReplaceCitations(t *testing.T) {
	db := openTestDB(t)

	n, err := db.ReplaceCitations(testCitations())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := db.CountCitations()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// A second run replaces rather than accumulates
	n, err = db.ReplaceCitations(testCitations()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err = db.CountCitations()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearch(t *testing.T) {
	db := openTestDB(t)
	_, err := db.ReplaceCitations(testCitations())
	require.NoError(t, err)

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{"learning", []string{"1", "2"}},
		{"genomics", []string{"3"}},
		{"White", []string{"3"}},
		{"Science", []string{"2"}},
		{"10.1234/smith", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			require.NoError(t, err)

			var ids []string
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSaveGroups_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	cits := testCitations()

	groups := []citation.DuplicateGroup{
		{Unique: cits[2], Duplicates: []citation.Citation{cits[0], cits[1]}},
		{Unique: cits[1], Duplicates: []citation.Citation{cits[0]}},
	}
	require.NoError(t, db.SaveGroups(groups))

	got, err := db.Groups()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "3", got[0].Unique.ID)
	require.Len(t, got[0].Duplicates, 2)
	assert.Equal(t, "1", got[0].Duplicates[0].ID)
	assert.Equal(t, "2", got[0].Duplicates[1].ID)
	assert.Equal(t, "2", got[1].Unique.ID)
	assert.Equal(t, cits[0], got[1].Duplicates[0])
}

func TestSaveGroups_Replaces(t *testing.T) {
	db := openTestDB(t)
	cits := testCitations()

	require.NoError(t, db.SaveGroups([]citation.DuplicateGroup{
		{Unique: cits[0], Duplicates: []citation.Citation{cits[1]}},
	}))
	require.NoError(t, db.SaveGroups(nil))

	got, err := db.Groups()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"learning", "learning"},
		{"  deep learning ", "deep learning"},
		{"10.1234/x", `"10.1234/x"`},
		{`say "hi"-there`, `"say ""hi""-there"`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, prepareFTSQuery(tt.in))
		})
	}
}

func TestFormatAuthorsText(t *testing.T) {
	got := formatAuthorsText([]citation.Author{
		{FamilyName: "Brown", GivenName: "Bob"},
		{FamilyName: "White"},
	})
	assert.Equal(t, "Bob Brown, White", got)
}
