// Package db provides a database interface and implementations.
package db

import (
	"path/filepath"
	"strings"

	"github.com/blacktop/fa/internal/model"
)

// Database is the interface that wraps the basic database operations.
type Database interface {
	// Connect connects to the database.
	Connect() error

	// SaveSymbols stores the symbols found for binary in project.
	// It replaces any symbols previously stored for that pair.
	SaveSymbols(binary, project string, syms []*model.Symbol) error

	// GetSymbols returns every symbol stored for binary in project.
	// It returns ErrNotFound if there are none.
	GetSymbols(binary, project string) ([]*model.Symbol, error)

	// GetSymbol returns the rows stored for one symbol name.
	// It returns ErrNotFound if the name is unknown.
	GetSymbol(binary, project, name string) ([]*model.Symbol, error)

	// Close closes the database.
	Close() error
}

// Open picks a database for target: a postgres URL, a sqlite file (.db or
// .sqlite) or otherwise a gob file.
func Open(target string, batchSize int) (Database, error) {
	switch {
	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"):
		return NewPostgres(target, batchSize)
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSqlite(target, batchSize)
	}
	return NewInMemory(target)
}
