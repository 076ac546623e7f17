// Package model contains the symbol model for the database.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/blacktop/fa/pkg/interp"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("no symbol found")
)

// Symbol is one address matched for a symbol name in a binary.
//
// A symbol whose signatures resolved to several addresses is stored as one
// row per address, each with Ambiguous set.
type Symbol struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	Binary  string `gorm:"column:binary_name;index:idx_binary_project;not null" json:"binary"`
	Project string `gorm:"index:idx_binary_project;not null" json:"project"`
	Name    string `gorm:"index;not null" json:"name"`
	Address uint64 `gorm:"-" json:"address"`
	// sqlite integers are signed; addresses are stored as hex text.
	AddressHex string    `gorm:"column:address;not null" json:"-"`
	Ambiguous  bool      `json:"ambiguous,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Symbol) BeforeSave(*gorm.DB) error {
	s.AddressHex = fmt.Sprintf("%#x", s.Address)
	return nil
}

func (s *Symbol) AfterFind(*gorm.DB) error {
	addr, err := strconv.ParseUint(s.AddressHex, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid address %q for symbol %s: %w", s.AddressHex, s.Name, err)
	}
	s.Address = addr
	return nil
}

func (s Symbol) String() string {
	if s.Ambiguous {
		return fmt.Sprintf("%#x: %s (ambiguous)", s.Address, s.Name)
	}
	return fmt.Sprintf("%#x: %s", s.Address, s.Name)
}

// FromTable flattens a symbol table into rows, ordered by name then by
// match order.
func FromTable(binary, project string, t interp.SymbolTable) []*Symbol {
	var syms []*Symbol
	for _, name := range t.Names() {
		addrs := t[name]
		for _, addr := range addrs {
			syms = append(syms, &Symbol{
				Binary:    binary,
				Project:   project,
				Name:      name,
				Address:   addr,
				Ambiguous: len(addrs) != 1,
			})
		}
	}
	return syms
}

// ToTable groups rows back into a symbol table.
func ToTable(syms []*Symbol) interp.SymbolTable {
	t := make(interp.SymbolTable)
	for _, s := range syms {
		t[s.Name] = append(t[s.Name], s.Address)
	}
	return t
}
