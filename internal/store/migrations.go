package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	file    string
	sql     string
}

// migrate brings the schema up to the newest embedded migration. The applied
// version lives in SQLite's user_version header field; pending scripts run in
// a single transaction so a failure leaves the previous version intact.
func migrate(db *sql.DB) error {
	all, err := readMigrations(migrationsFS)
	if err != nil {
		return err
	}

	current, err := schemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	pending := all[:0:0]
	for _, m := range all {
		if m.version > current {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, m := range pending {
		if _, err := tx.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply %s: %w", m.file, err)
		}
	}

	latest := pending[len(pending)-1].version
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, latest)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", latest, err)
	}

	return tx.Commit()
}

func schemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func readMigrations(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}

	out := make([]migration, 0, len(files))
	for _, f := range files {
		v, err := migrationVersion(f)
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		out = append(out, migration{version: v, file: f, sql: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	for i := 1; i < len(out); i++ {
		if out[i].version == out[i-1].version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].version)
		}
	}
	return out, nil
}

// migrationVersion extracts the numeric prefix of "<version>_<name>.sql".
func migrationVersion(file string) (int, error) {
	base := file[strings.LastIndex(file, "/")+1:]
	prefix, _, ok := strings.Cut(base, "_")
	if !ok {
		return 0, fmt.Errorf("invalid migration filename %q", file)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid migration version in %q", file)
	}
	return v, nil
}
