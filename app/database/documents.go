package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// DocumentStore reads the JSONB-backed collections the finance engine
// consumes. Collections are rows of app_documents grouped by collection
// name; a missing collection is simply zero rows.
type DocumentStore struct {
	DB *sql.DB
}

// NewDocumentStore wraps a database handle.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{DB: db}
}

// LoadCollection returns every document in a collection keyed by doc_key.
// Documents that fail to decode are skipped; the engine treats malformed
// input as recoverable, not fatal.
func (s *DocumentStore) LoadCollection(name string) (map[string]map[string]interface{}, error) {
	rows, err := s.DB.Query(`SELECT doc_key, data FROM app_documents WHERE collection = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	defer rows.Close()

	docs := make(map[string]map[string]interface{})
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			continue
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	return docs, nil
}
