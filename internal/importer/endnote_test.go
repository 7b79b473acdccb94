package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibdedupe/internal/citation"
)

const endnoteSample = `<?xml version="1.0" encoding="UTF-8"?>
<xml><records>
<record>
  <database name="Library.enl" path="Library.enl">Library.enl</database>
  <source-app name="EndNote" version="20.0">EndNote</source-app>
  <rec-number>7</rec-number>
  <ref-type name="Journal Article">17</ref-type>
  <contributors><authors>
    <author><style face="normal" font="default" size="100%">Smith, John</style></author>
    <author><style face="normal" font="default" size="100%">Doe, </style><style face="italic">Jane</style></author>
  </authors></contributors>
  <auth-address>University of Washington</auth-address>
  <titles>
    <title><style face="normal" font="default" size="100%">Effects of X on Y</style></title>
    <secondary-title>Journal of Things</secondary-title>
  </titles>
  <periodical><full-title>Journal of Things</full-title><abbr-1>J Things</abbr-1></periodical>
  <pages>1-10</pages>
  <volume>12</volume>
  <number>4</number>
  <keywords><keyword>x</keyword><keyword>y</keyword></keywords>
  <dates><year><style>2015</style></year><pub-dates><date>Mar</date></pub-dates></dates>
  <isbn>1234-5678 (Print)&#xD;8765-4321 (Linking)</isbn>
  <accession-num>25000001</accession-num>
  <electronic-resource-num>10.1000/things.2015</electronic-resource-num>
  <abstract>We study X.</abstract>
  <urls><related-urls><url>https://example.org/a</url></related-urls><pdf-urls><url>internal-pdf://a.pdf</url></pdf-urls></urls>
  <language>eng</language>
  <publisher>Things Press</publisher>
  <notes>Imported from Scopus</notes>
</record>
<record>
  <ref-type name="Book">6</ref-type>
  <titles><title>A Book</title><alt-title>Bk</alt-title></titles>
  <dates><pub-dates><date>June 2001</date></pub-dates></dates>
  <accession-num>WOS:000123</accession-num>
</record>
</records></xml>`

func TestEndNoteXMLParser_Parse(t *testing.T) {
	cits, err := NewEndNoteXMLParser().WithSource("Google Scholar").Parse(endnoteSample)
	require.NoError(t, err)
	require.Len(t, cits, 2)

	c := cits[0]
	assert.Equal(t, "7", c.ID)
	assert.Equal(t, []string{"Journal Article"}, c.CitationType)
	assert.Equal(t, "Effects of X on Y", c.Title)
	assert.Equal(t, []citation.Author{
		{FamilyName: "Smith", GivenName: "John"},
		{FamilyName: "Doe", GivenName: "Jane", Affiliation: "University of Washington"},
	}, c.Authors)
	assert.Equal(t, "Journal of Things", c.Journal)
	assert.Equal(t, "J Things", c.JournalAbbr)
	assert.Equal(t, "1-10", c.Pages)
	assert.Equal(t, "12", c.Volume)
	assert.Equal(t, "4", c.Issue)
	assert.Equal(t, []string{"x", "y"}, c.Keywords)
	assert.Equal(t, 2015, c.Year)
	assert.Equal(t, []string{"1234-5678", "8765-4321"}, c.ISSN)
	assert.Equal(t, "25000001", c.PMID)
	assert.Equal(t, "10.1000/things.2015", c.DOI)
	assert.Equal(t, "We study X.", c.Abstract)
	assert.Equal(t, []string{"https://example.org/a", "internal-pdf://a.pdf"}, c.URLs)
	assert.Equal(t, "eng", c.Language)
	assert.Equal(t, "Things Press", c.Publisher)
	assert.Equal(t, []string{"Imported from Scopus"}, c.ExtraFields["notes"])
	assert.NotContains(t, c.ExtraFields, "database")
	assert.Equal(t, "Google Scholar", c.Source)

	c = cits[1]
	assert.Equal(t, []string{"Book"}, c.CitationType)
	assert.Equal(t, "A Book", c.Title)
	assert.Equal(t, "Bk", c.JournalAbbr)
	assert.Equal(t, 2001, c.Year)
	assert.Empty(t, c.PMID)
	assert.Equal(t, []string{"WOS:000123"}, c.ExtraFields["accession-num"])
}

func TestEndNoteXMLParser_Charset(t *testing.T) {
	// "Café" in ISO-8859-1
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<xml><records><record><titles><title>Caf\xe9 culture</title></titles></record></records></xml>"

	cits, err := NewEndNoteXMLParser().Parse(input)
	require.NoError(t, err)
	require.Len(t, cits, 1)
	assert.Equal(t, "Café culture", cits[0].Title)
}

func TestEndNoteXMLParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no records", `<xml><records></records></xml>`},
		{"not xml", `just some text`},
		{"truncated", `<xml><records><record><titles><title>Oops`},
		{"unknown charset", `<?xml version="1.0" encoding="klingon"?><xml/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndNoteXMLParser().Parse(tt.input)
			require.Error(t, err)
			assert.Equal(t, citation.KindInvalidFormat, citation.KindOf(err))
		})
	}
}
