package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres is a database that stores data in a Postgres database.
type Postgres struct {
	// URL is a postgres:// URL or a key=value DSN.
	URL string
	// Config
	BatchSize int

	store
}

// NewPostgres creates a new Postgres database.
func NewPostgres(url string, batchSize int) (Database, error) {
	if url == "" {
		return nil, fmt.Errorf("'url' is required")
	}
	return &Postgres{
		URL:       url,
		BatchSize: batchSize,
	}, nil
}

// Connect connects to the database.
func (p *Postgres) Connect() (err error) {
	p.db, err = gorm.Open(postgres.Open(p.URL), &gorm.Config{
		CreateBatchSize: p.BatchSize,
		TranslateError:  true,
		Logger:          logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect postgres database: %w", err)
	}
	p.batchSize = p.BatchSize
	return p.migrate()
}
