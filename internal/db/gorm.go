package db

import (
	"errors"
	"fmt"

	"github.com/blacktop/fa/internal/model"
	"gorm.io/gorm"
)

// store implements the symbol queries shared by the gorm backed databases.
type store struct {
	db        *gorm.DB
	batchSize int
}

func (s *store) migrate() error {
	return s.db.AutoMigrate(&model.Symbol{})
}

// SaveSymbols stores the symbols found for binary in project.
// It replaces any symbols previously stored for that pair.
func (s *store) SaveSymbols(binary, project string, syms []*model.Symbol) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("binary_name = ? AND project = ?", binary, project).Delete(&model.Symbol{}).Error; err != nil {
			return fmt.Errorf("failed to delete old symbols: %w", err)
		}
		if len(syms) == 0 {
			return nil
		}
		for _, sym := range syms {
			sym.ID = 0
			sym.Binary = binary
			sym.Project = project
		}
		if err := tx.CreateInBatches(syms, max(s.batchSize, 1)).Error; err != nil {
			return fmt.Errorf("failed to create symbols: %w", err)
		}
		return nil
	})
}

// GetSymbols returns every symbol stored for binary in project.
// It returns ErrNotFound if there are none.
func (s *store) GetSymbols(binary, project string) ([]*model.Symbol, error) {
	var syms []*model.Symbol
	if err := s.db.Where("binary_name = ? AND project = ?", binary, project).
		Order("name, id").
		Find(&syms).Error; err != nil {
		return nil, err
	}
	if len(syms) == 0 {
		return nil, model.ErrNotFound
	}
	return syms, nil
}

// GetSymbol returns the rows stored for one symbol name.
// It returns ErrNotFound if the name is unknown.
func (s *store) GetSymbol(binary, project, name string) ([]*model.Symbol, error) {
	var syms []*model.Symbol
	if err := s.db.Where("binary_name = ? AND project = ? AND name = ?", binary, project, name).
		Order("id").
		Find(&syms).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if len(syms) == 0 {
		return nil, model.ErrNotFound
	}
	return syms, nil
}

// Close closes the database.
func (s *store) Close() error {
	if s.db == nil {
		return nil
	}
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
