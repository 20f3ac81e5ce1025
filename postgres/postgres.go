// Package postgres provides PostgreSQL implementations of domain service interfaces.
package postgres

import (
	"log/slog"

	"github.com/avaldeso/machina"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the database connection pool and exposes domain services.
type DB struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	storage machina.FileStorage

	// Domain services (initialized in NewDB)
	UserService          machina.UserService
	SessionService       machina.SessionService
	ReportService        machina.ReportService
	ComponentTypeService machina.ComponentTypeService
}

// NewDB creates a new database wrapper with all services initialized.
// The file storage is used by report reconciliation for photo uploads
// and pruning.
func NewDB(pool *pgxpool.Pool, logger *slog.Logger, storage machina.FileStorage) *DB {
	db := &DB{
		pool:    pool,
		logger:  logger,
		storage: storage,
	}

	// Initialize services with reference back to DB
	db.UserService = &UserService{db: db}
	db.SessionService = NewSessionService(db)
	db.ReportService = &ReportService{db: db}
	db.ComponentTypeService = &ComponentTypeService{db: db}

	return db
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer using service methods.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}
