// Package storage persists citations and duplicate groups as JSONL files and
// in a rebuildable SQLite index.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/matsen/bibdedupe/internal/citation"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all citations from a JSONL file. A missing file yields no
// citations and no error.
func ReadAll(path string) ([]citation.Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(citation.FromIO(err), "storage: opening citations file")
	}
	defer f.Close()

	cits, err := Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: reading %s", path)
	}
	return cits, nil
}

// Decode reads one JSON citation per line from r. Blank lines are skipped.
func Decode(r io.Reader) ([]citation.Citation, error) {
	var cits []citation.Citation
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var c citation.Citation
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, citation.MalformedInput(err.Error(), lineNum)
		}
		cits = append(cits, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, citation.FromIO(err)
	}
	return cits, nil
}

// Encode writes one JSON citation per line to w.
func Encode(w io.Writer, cits []citation.Citation) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, c := range cits {
		if err := enc.Encode(c); err != nil {
			return eris.Wrapf(err, "storage: encoding citation %d", i)
		}
	}
	return nil
}

// Append adds a citation to the end of a JSONL file.
func Append(path string, c citation.Citation) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return eris.Wrap(citation.FromIO(err), "storage: opening citations file for append")
	}
	defer f.Close()

	return Encode(f, []citation.Citation{c})
}

// WriteAll writes all citations to a JSONL file, replacing existing content.
func WriteAll(path string, cits []citation.Citation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(citation.FromIO(err), "storage: creating citations file")
	}

	if err := Encode(f, cits); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(citation.FromIO(err), "storage: closing citations file")
	}
	return nil
}

// UniqueIDs rewrites colliding citation IDs so every non-empty ID is unique.
// The first holder of an ID keeps it; later holders get -2, -3, etc., skipping
// suffixes that any input citation already uses. Returns the number of IDs
// changed.
func UniqueIDs(cits []citation.Citation) int {
	original := make(map[string]bool, len(cits))
	for _, c := range cits {
		original[c.ID] = true
	}

	assigned := make(map[string]bool, len(cits))
	changed := 0
	for i := range cits {
		id := cits[i].ID
		if id == "" {
			continue
		}
		if !assigned[id] {
			assigned[id] = true
			continue
		}

		// Start at 2: id is taken, so the first duplicate becomes id-2
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s-%d", id, n)
			if !original[candidate] && !assigned[candidate] {
				cits[i].ID = candidate
				assigned[candidate] = true
				changed++
				break
			}
		}
	}
	return changed
}
