package citation

// Author represents a citation author. Either name part may be empty when the
// source omitted it.
type Author struct {
	FamilyName  string `json:"family_name"`           // Last/family name
	GivenName   string `json:"given_name"`            // First/given name(s) or initials
	Affiliation string `json:"affiliation,omitempty"` // Institution, if the source lists one
}

// String formats the author as "Family, Given".
func (a Author) String() string {
	if a.GivenName == "" {
		return a.FamilyName
	}
	if a.FamilyName == "" {
		return a.GivenName
	}
	return a.FamilyName + ", " + a.GivenName
}
