package db

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

type PostgresDB struct {
	Conn *sql.DB
}

func NewPostgresDB(host string, port int, user, password, dbname string) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Connected to PostgreSQL")
	return &PostgresDB{Conn: conn}, nil
}

// Migrate creates the storefront tables if they don't exist yet.
func (db *PostgresDB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cars (
			car_id      TEXT PRIMARY KEY,
			make        TEXT NOT NULL,
			model       TEXT NOT NULL,
			year        TEXT NOT NULL,
			color       TEXT NOT NULL,
			image       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(10,2) NOT NULL,
			quantity    INTEGER NOT NULL CHECK (quantity >= 0),
			date_added  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			cust_id      TEXT PRIMARY KEY,
			date_created TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id     TEXT PRIMARY KEY,
			order_total  NUMERIC(10,2) NOT NULL,
			date_created TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS car_orders (
			car_order_id TEXT PRIMARY KEY,
			car_id       TEXT NOT NULL REFERENCES cars (car_id),
			order_id     TEXT NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
			cust_id      TEXT NOT NULL REFERENCES customers (cust_id),
			quantity     INTEGER NOT NULL CHECK (quantity > 0),
			price        NUMERIC(10,2) NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	log.Println("✅ Database schema ready")
	return nil
}

func (db *PostgresDB) Close() error {
	return db.Conn.Close()
}
