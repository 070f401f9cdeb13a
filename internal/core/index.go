package core

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"
)

// refIndex holds every specifier of one scan. It lives in an in-memory
// SQLite database that is discarded when the scan ends.
type refIndex struct {
	db *sql.DB
}

func openIndex(ctx context.Context) (*refIndex, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &refIndex{db: db}, nil
}

func (ix *refIndex) Close() error { return ix.db.Close() }

func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE files (
			id   INTEGER PRIMARY KEY,
			path TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE refs (
			id          INTEGER PRIMARY KEY,
			file_id     INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			specifier   TEXT NOT NULL,
			relative    INTEGER NOT NULL,
			target      TEXT,
			probe       TEXT,
			byte_offset INTEGER NOT NULL,
			line_start  INTEGER NOT NULL,
			FOREIGN KEY(file_id) REFERENCES files(id)
		);`,
		`CREATE INDEX idx_refs_target ON refs(target);`,
		`CREATE INDEX idx_refs_file ON refs(file_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// indexedFile is one parsed source file ready for insertion.
type indexedFile struct {
	path string // absolute
	refs []Reference
}

// insertFiles stores files and their references in one transaction.
func (ix *refIndex) insertFiles(ctx context.Context, files []indexedFile) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fileStmt, err := tx.PrepareContext(ctx, `INSERT INTO files (path) VALUES (?)`)
	if err != nil {
		return err
	}
	defer fileStmt.Close()
	refStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO refs (file_id, kind, specifier, relative, target, probe, byte_offset, line_start)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer refStmt.Close()

	for _, f := range files {
		res, err := fileStmt.ExecContext(ctx, f.path)
		if err != nil {
			return err
		}
		fileID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, r := range f.refs {
			var target, probe sql.NullString
			if r.Target != "" {
				target = sql.NullString{String: r.Target, Valid: true}
				probe = sql.NullString{String: string(r.Probe), Valid: true}
			}
			relative := 0
			if IsRelativeSpecifier(r.Specifier.Value) {
				relative = 1
			}
			if _, err := refStmt.ExecContext(ctx, fileID, string(r.Specifier.Kind), r.Specifier.Value,
				relative, target, probe, r.Specifier.Offset, r.Specifier.Line); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// referencesTo returns every reference whose resolved target is target,
// ordered by file and position.
func (ix *refIndex) referencesTo(ctx context.Context, target string) ([]Reference, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT f.path, r.kind, r.specifier, r.target, r.probe, r.byte_offset, r.line_start
		 FROM refs r JOIN files f ON f.id = r.file_id
		 WHERE r.target = ?
		 ORDER BY f.path, r.byte_offset`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reference
	for rows.Next() {
		var ref Reference
		var kind, probe string
		if err := rows.Scan(&ref.File, &kind, &ref.Specifier.Value, &ref.Target, &probe,
			&ref.Specifier.Offset, &ref.Specifier.Line); err != nil {
			return nil, err
		}
		ref.Specifier.Kind = SpecifierKind(kind)
		ref.Probe = Probe(probe)
		out = append(out, ref)
	}
	return out, rows.Err()
}

// unresolvedCount counts relative specifiers that matched no project file.
func (ix *refIndex) unresolvedCount(ctx context.Context) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refs WHERE relative = 1 AND target IS NULL`).Scan(&n)
	return n, err
}
