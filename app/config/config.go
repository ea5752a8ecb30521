package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

type Config struct {
	DB *sql.DB
}

var AppConfig *Config

// DefaultAnchorYear is the enrollment year class shifting counts from
// when SOMAP_ANCHOR_YEAR is not set.
const DefaultAnchorYear = 2024

func InitDB() {
	psqlInfo := os.Getenv("DATABASE_URL")
	if psqlInfo == "" {
		host := envOr("PGHOST", "localhost")
		port := envOr("PGPORT", "5432")
		user := envOr("PGUSER", "postgres")
		dbname := envOr("PGDATABASE", "somap")
		psqlInfo = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
		if password := os.Getenv("PGPASSWORD"); password != "" {
			psqlInfo += " password=" + password
		}
		log.Printf("Connecting to PostgreSQL at %s:%s/%s", host, port, dbname)
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Testing database connection...")
	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppConfig = &Config{DB: db}
	log.Println("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

// AnchorYear returns the configured anchor enrollment year.
func AnchorYear() int {
	if raw := os.Getenv("SOMAP_ANCHOR_YEAR"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil && year > 2000 {
			return year
		}
		log.Printf("Ignoring invalid SOMAP_ANCHOR_YEAR %q", raw)
	}
	return DefaultAnchorYear
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
