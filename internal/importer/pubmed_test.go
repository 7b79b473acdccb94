package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibdedupe/internal/citation"
)

const medlineSample = `PMID- 31000001
OWN - NLM
STAT- MEDLINE
IS  - 1537-1719 (Electronic)
IS  - 0737-4038 (Linking)
VI  - 36
IP  - 5
DP  - 2019 May 1
TI  - Bayesian phylogenetic analysis of
      recombinant sequences.
PG  - 1010-1020
LID - 10.1093/molbev/msz012 [doi]
AB  - Recombination complicates
      phylogenetic inference.
FAU - Smith, John A
AU  - Smith JA
AD  - Fred Hutchinson Cancer Center, Seattle, WA, USA.
FAU - Doe, Jane
AU  - Doe J
LA  - eng
PT  - Journal Article
PT  - Research Support, N.I.H., Extramural
TA  - Mol Biol Evol
JT  - Molecular biology and evolution
MH  - Phylogeny
MH  - *Recombination, Genetic
OT  - ancestral recombination graph
PMC - PMC6500000
AID - S0000-0000(19)00000-0 [pii]

PMID- 00042
TI  - Short record.
AU  - Roe R
AD  - Somewhere.
DP  - 1999
`

func TestPubMedParser_Parse(t *testing.T) {
	cits, err := NewPubMedParser().WithSource("PubMed").Parse(medlineSample)
	require.NoError(t, err)
	require.Len(t, cits, 2)

	c := cits[0]
	assert.Equal(t, "31000001", c.PMID)
	assert.Equal(t, "Bayesian phylogenetic analysis of recombinant sequences.", c.Title)
	assert.Equal(t, "Recombination complicates phylogenetic inference.", c.Abstract)
	assert.Equal(t, []citation.Author{
		{FamilyName: "Smith", GivenName: "John A", Affiliation: "Fred Hutchinson Cancer Center, Seattle, WA, USA."},
		{FamilyName: "Doe", GivenName: "Jane"},
	}, c.Authors)
	assert.Equal(t, 2019, c.Year)
	assert.Equal(t, "36", c.Volume)
	assert.Equal(t, "5", c.Issue)
	assert.Equal(t, "1010-1020", c.Pages)
	assert.Equal(t, "10.1093/molbev/msz012", c.DOI)
	assert.Equal(t, []string{"1537-1719", "0737-4038"}, c.ISSN)
	assert.Equal(t, "Molecular biology and evolution", c.Journal)
	assert.Equal(t, "Mol Biol Evol", c.JournalAbbr)
	assert.Equal(t, "eng", c.Language)
	assert.Equal(t, []string{"Journal Article", "Research Support, N.I.H., Extramural"}, c.CitationType)
	assert.Equal(t, []string{"Phylogeny", "*Recombination, Genetic"}, c.MeshTerms)
	assert.Equal(t, []string{"ancestral recombination graph"}, c.Keywords)
	assert.Equal(t, "PMC6500000", c.PMCID)
	assert.Equal(t, []string{"S0000-0000(19)00000-0 [pii]"}, c.ExtraFields["AID"])
	assert.Equal(t, []string{"NLM"}, c.ExtraFields["OWN"])
	assert.Equal(t, "PubMed", c.Source)

	// Without FAU the abbreviated AU form is used
	c = cits[1]
	assert.Equal(t, "00042", c.PMID)
	assert.Equal(t, []citation.Author{{FamilyName: "Roe", GivenName: "R", Affiliation: "Somewhere."}}, c.Authors)
	assert.Equal(t, 1999, c.Year)
}

func TestPubMedParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  citation.Kind
	}{
		{"no records", "nothing here", citation.KindInvalidFormat},
		{"tag before PMID", "TI  - Orphan title\nPMID- 1\n", citation.KindMalformedInput},
		{"garbage inside record", "PMID- 1\nTI  - ok\nnot a tag line\n", citation.KindMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPubMedParser().Parse(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, citation.KindOf(err))
		})
	}
}

func TestMedlineTag(t *testing.T) {
	tests := []struct {
		line      string
		tag, want string
		ok        bool
	}{
		{"PMID- 123", "PMID", "123", true},
		{"TI  - A title", "TI", "A title", true},
		{"FAU - Smith, J", "FAU", "Smith, J", true},
		{"      continuation", "", "", false},
		{"ti  - lowercase", "", "", false},
		{"AB", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tag, value, ok := medlineTag(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.tag, tag)
			assert.Equal(t, tt.want, value)
		})
	}
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in        string
		value     string
		qualifier string
		ok        bool
	}{
		{"10.1/x [doi]", "10.1/x", "doi", true},
		{"1234-5678 (Print)", "1234-5678", "print", true},
		{"plain", "plain", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, q, ok := splitQualified(tt.in)
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.qualifier, q)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
