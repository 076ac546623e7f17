package db

import (
	"encoding/gob"
	"os"
	"slices"

	"github.com/blacktop/fa/internal/model"
	"github.com/pkg/errors"
)

// Memory is a database that stores data in memory and persists it to a gob
// file on Close.
type Memory struct {
	Symbols map[string][]*model.Symbol
	Path    string
}

// NewInMemory creates a new in-memory database.
func NewInMemory(path string) (Database, error) {
	if path == "" {
		return nil, errors.New("'path' is required")
	}
	return &Memory{
		Symbols: make(map[string][]*model.Symbol),
		Path:    path,
	}, nil
}

func memKey(binary, project string) string {
	return project + "\x00" + binary
}

// Connect loads the gob file if it exists.
func (m *Memory) Connect() error {
	f, err := os.Open(m.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrap(err, "failed to open memory database")
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&m.Symbols); err != nil {
		return errors.Wrapf(err, "failed to decode %s", m.Path)
	}
	return nil
}

// SaveSymbols stores the symbols found for binary in project.
// It replaces any symbols previously stored for that pair.
func (m *Memory) SaveSymbols(binary, project string, syms []*model.Symbol) error {
	rows := make([]*model.Symbol, 0, len(syms))
	for i, sym := range syms {
		row := *sym
		row.ID = uint(i + 1)
		row.Binary = binary
		row.Project = project
		rows = append(rows, &row)
	}
	m.Symbols[memKey(binary, project)] = rows
	return nil
}

// GetSymbols returns every symbol stored for binary in project.
// It returns ErrNotFound if there are none.
func (m *Memory) GetSymbols(binary, project string) ([]*model.Symbol, error) {
	syms := m.Symbols[memKey(binary, project)]
	if len(syms) == 0 {
		return nil, model.ErrNotFound
	}
	return slices.Clone(syms), nil
}

// GetSymbol returns the rows stored for one symbol name.
// It returns ErrNotFound if the name is unknown.
func (m *Memory) GetSymbol(binary, project, name string) ([]*model.Symbol, error) {
	var out []*model.Symbol
	for _, sym := range m.Symbols[memKey(binary, project)] {
		if sym.Name == name {
			out = append(out, sym)
		}
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(model.ErrNotFound, "symbol %s", name)
	}
	return out, nil
}

// Close writes the database to its gob file.
func (m *Memory) Close() error {
	f, err := os.Create(m.Path)
	if err != nil {
		return errors.Wrap(err, "failed to create memory database")
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m.Symbols)
}
