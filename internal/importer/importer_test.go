package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matsen/bibdedupe/internal/citation"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2015", 2015},
		{"2015 Mar 3", 2015},
		{"2020/05/01/", 2020},
		{"c2019", 2019},
		{"Spring 1998-1999", 1998},
		{"12345", 0},
		{"n.d.", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseYear(tt.in))
		})
	}
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "1-10", joinPages("1", "10"))
	assert.Equal(t, "5", joinPages("5", "5"))
	assert.Equal(t, "5", joinPages("5", ""))
	assert.Equal(t, "e100", joinPages("", "e100"))
	assert.Equal(t, "", joinPages(" ", ""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a; b;;a; ", ";"))
	assert.Nil(t, splitList("", ";"))
}

func TestParseAuthor(t *testing.T) {
	tests := []struct {
		in   string
		want citation.Author
	}{
		{"Smith, John", citation.Author{FamilyName: "Smith", GivenName: "John"}},
		{"John Smith", citation.Author{FamilyName: "Smith", GivenName: "John"}},
		{"John Q. Smith", citation.Author{FamilyName: "Smith", GivenName: "John Q."}},
		{"Martin Luther King Jr.", citation.Author{FamilyName: "King Jr.", GivenName: "Martin Luther"}},
		{"King, Jr., Martin", citation.Author{FamilyName: "King Jr.", GivenName: "Martin"}},
		{"Madonna", citation.Author{FamilyName: "Madonna"}},
		{"  ", citation.Author{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAuthor(tt.in))
		})
	}
}

func TestParseMedlineAuthor(t *testing.T) {
	tests := []struct {
		in   string
		want citation.Author
	}{
		{"Smith JA", citation.Author{FamilyName: "Smith", GivenName: "JA"}},
		{"van der Berg J", citation.Author{FamilyName: "van der Berg", GivenName: "J"}},
		{"WHO Consortium", citation.Author{FamilyName: "WHO Consortium"}},
		{"Consortium", citation.Author{FamilyName: "Consortium"}},
		{"Smith, J", citation.Author{FamilyName: "Smith", GivenName: "J"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseMedlineAuthor(tt.in))
		})
	}
}

func TestSetAffiliation(t *testing.T) {
	var c citation.Citation
	setAffiliation(&c, "Orphan Institute")
	assert.Equal(t, []string{"Orphan Institute"}, c.ExtraFields["affiliation"])

	c.Authors = []citation.Author{{FamilyName: "A"}, {FamilyName: "B"}}
	setAffiliation(&c, "First")
	setAffiliation(&c, "Second")
	assert.Empty(t, c.Authors[0].Affiliation)
	assert.Equal(t, "First; Second", c.Authors[1].Affiliation)
}
