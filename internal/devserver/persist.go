package devserver

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"vinestore/internal/store"
)

// persistStore backs the object table with SQLite so dev daemon restarts
// keep their objects.
type persistStore struct {
	db *sql.DB
}

func openPersistStore(path string) (*persistStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open persist db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS objects (
		id TEXT PRIMARY KEY,
		typename TEXT NOT NULL,
		content BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &persistStore{db: db}, nil
}

func (p *persistStore) loadAll() (map[store.ObjectID]storedObject, error) {
	rows, err := p.db.Query("SELECT id, typename, content FROM objects")
	if err != nil {
		return nil, fmt.Errorf("load objects: %w", err)
	}
	defer rows.Close()

	objects := make(map[store.ObjectID]storedObject)
	for rows.Next() {
		var rawID, typename string
		var content []byte
		if err := rows.Scan(&rawID, &typename, &content); err != nil {
			return nil, fmt.Errorf("scan object row: %w", err)
		}
		id, err := store.ParseObjectID(rawID)
		if err != nil {
			return nil, fmt.Errorf("corrupt object id in persist db: %w", err)
		}
		objects[id] = storedObject{typename: typename, content: content}
	}
	return objects, rows.Err()
}

func (p *persistStore) put(id store.ObjectID, object storedObject) error {
	_, err := p.db.Exec(
		"INSERT OR REPLACE INTO objects (id, typename, content) VALUES (?, ?, ?)",
		id.String(), object.typename, object.content,
	)
	return err
}

func (p *persistStore) delete(id store.ObjectID) error {
	_, err := p.db.Exec("DELETE FROM objects WHERE id = ?", id.String())
	return err
}

func (p *persistStore) Close() error {
	return p.db.Close()
}
