package citation

// Parser converts the text of one export into citations.
//
// Implementations are immutable after construction and safe for concurrent
// use. Each also offers a WithSource(tag) method returning a copy that stamps
// every parsed citation's Source with tag.
type Parser interface {
	Parse(input string) ([]Citation, error)
}

// StampSource sets Source on every citation when tag is non-empty.
func StampSource(cits []Citation, tag string) {
	if tag == "" {
		return
	}
	for i := range cits {
		cits[i].Source = tag
	}
}
