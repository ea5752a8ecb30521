package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	if err := createUsersTables(db); err != nil {
		return err
	}
	if err := createDocumentsTable(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createUsersTables(db *sql.DB) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS pgcrypto;

		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id),
			role_id UUID NOT NULL REFERENCES roles(id),
			PRIMARY KEY (user_id, role_id)
		);
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to run migration for users tables: %v", err)
		return err
	}
	return nil
}

func createDocumentsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS app_documents (
			collection TEXT NOT NULL,
			doc_key TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, doc_key)
		);

		CREATE INDEX IF NOT EXISTS idx_app_documents_collection
			ON app_documents (collection);
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to run migration for app_documents table: %v", err)
		return err
	}
	return nil
}
