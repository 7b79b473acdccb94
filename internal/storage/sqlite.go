package storage

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/matsen/bibdedupe/internal/citation"
)

// Group member roles.
const (
	RoleUnique    = "unique"
	RoleDuplicate = "duplicate"
)

// DB wraps a SQLite database connection. The database is an index rebuilt
// from scratch on every dedupe run; JSONL files remain the source of truth.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "storage: opening database")
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "storage: creating schema")
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- Every citation of the last run, in input order
		CREATE TABLE IF NOT EXISTS citations (
			pos INTEGER PRIMARY KEY,
			id TEXT,
			title TEXT NOT NULL,
			pub_year INTEGER,
			doi TEXT,
			pmid TEXT,
			source TEXT,
			data_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_citations_doi ON citations(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Duplicate groups in output order; member 0 is the canonical record
		CREATE TABLE IF NOT EXISTS group_members (
			group_id INTEGER NOT NULL,
			member INTEGER NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('unique', 'duplicate')),
			data_json TEXT NOT NULL,
			PRIMARY KEY (group_id, member)
		);

		-- Full-text search over stored citations
		CREATE VIRTUAL TABLE IF NOT EXISTS citations_fts USING fts5(
			pos UNINDEXED,
			title,
			authors_text,
			journal
		);
	`

	_, err := db.Exec(schema)
	return err
}

// ReplaceCitations clears the citation tables and stores cits in order.
func (d *DB) ReplaceCitations(cits []citation.Citation) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, eris.Wrap(err, "storage: beginning transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"citations", "citations_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, eris.Wrapf(err, "storage: clearing %s", table)
		}
	}

	citStmt, err := tx.Prepare(`
		INSERT INTO citations (pos, id, title, pub_year, doi, pmid, source, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, eris.Wrap(err, "storage: preparing citations insert")
	}
	defer citStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO citations_fts (pos, title, authors_text, journal)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, eris.Wrap(err, "storage: preparing fts insert")
	}
	defer ftsStmt.Close()

	for i, c := range cits {
		data, err := json.Marshal(c)
		if err != nil {
			return 0, eris.Wrapf(err, "storage: marshaling citation %d", i)
		}

		_, err = citStmt.Exec(
			i, nullableStringValue(c.ID), c.Title, nullableYear(c.Year),
			nullableStringValue(c.DOI), nullableStringValue(c.PMID),
			nullableStringValue(c.Source), string(data),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "storage: inserting citation %d", i)
		}

		if _, err := ftsStmt.Exec(i, c.Title, formatAuthorsText(c.Authors), c.Journal); err != nil {
			return 0, eris.Wrapf(err, "storage: inserting fts for citation %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "storage: committing citations")
	}
	return len(cits), nil
}

// SaveGroups replaces the stored duplicate groups. Group and member order
// is preserved.
func (d *DB) SaveGroups(groups []citation.DuplicateGroup) error {
	tx, err := d.db.Begin()
	if err != nil {
		return eris.Wrap(err, "storage: beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM group_members"); err != nil {
		return eris.Wrap(err, "storage: clearing group_members")
	}

	stmt, err := tx.Prepare(`
		INSERT INTO group_members (group_id, member, role, data_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return eris.Wrap(err, "storage: preparing group insert")
	}
	defer stmt.Close()

	insert := func(groupID, member int, role string, c citation.Citation) error {
		data, err := json.Marshal(c)
		if err != nil {
			return eris.Wrapf(err, "storage: marshaling group %d member %d", groupID, member)
		}
		if _, err := stmt.Exec(groupID, member, role, string(data)); err != nil {
			return eris.Wrapf(err, "storage: inserting group %d member %d", groupID, member)
		}
		return nil
	}

	for gi, g := range groups {
		if err := insert(gi, 0, RoleUnique, g.Unique); err != nil {
			return err
		}
		for di, dup := range g.Duplicates {
			if err := insert(gi, di+1, RoleDuplicate, dup); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "storage: committing groups")
	}
	return nil
}

// Groups reads the stored duplicate groups back in stored order.
func (d *DB) Groups() ([]citation.DuplicateGroup, error) {
	rows, err := d.db.Query(`
		SELECT group_id, role, data_json
		FROM group_members
		ORDER BY group_id, member
	`)
	if err != nil {
		return nil, eris.Wrap(err, "storage: listing groups")
	}
	defer rows.Close()

	var groups []citation.DuplicateGroup
	lastID := -1
	for rows.Next() {
		var groupID int
		var role, data string
		if err := rows.Scan(&groupID, &role, &data); err != nil {
			return nil, eris.Wrap(err, "storage: scanning group member")
		}

		var c citation.Citation
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrapf(err, "storage: parsing group %d member JSON", groupID)
		}

		if groupID != lastID {
			groups = append(groups, citation.DuplicateGroup{})
			lastID = groupID
		}
		g := &groups[len(groups)-1]
		if role == RoleUnique {
			g.Unique = c
		} else {
			g.Duplicates = append(g.Duplicates, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "storage: iterating groups")
	}
	return groups, nil
}

// CountCitations returns the number of stored citations.
func (d *DB) CountCitations() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM citations").Scan(&count); err != nil {
		return 0, eris.Wrap(err, "storage: counting citations")
	}
	return count, nil
}

// Search performs a full-text search over titles, authors, and journals and
// returns matching citations in input order.
func (d *DB) Search(query string, limit int) ([]citation.Citation, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT data_json
		FROM citations
		WHERE pos IN (SELECT pos FROM citations_fts WHERE citations_fts MATCH ?)
		ORDER BY pos
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, eris.Wrap(err, "storage: searching")
	}
	defer rows.Close()

	var cits []citation.Citation
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "storage: scanning citation")
		}
		var c citation.Citation
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrap(err, "storage: parsing citation JSON")
		}
		cits = append(cits, c)
	}
	return cits, eris.Wrap(rows.Err(), "storage: iterating search results")
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []citation.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.GivenName != "" {
			names = append(names, a.GivenName+" "+a.FamilyName)
		} else {
			names = append(names, a.FamilyName)
		}
	}
	return strings.Join(names, ", ")
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableYear(y int) sql.NullInt64 {
	if y == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(y), Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// For simple queries, just quote the terms
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
