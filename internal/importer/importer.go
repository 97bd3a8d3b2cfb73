// Package importer converts extracted statement lines into transaction records.
package importer

import (
	"log/slog"
	"strings"

	"github.com/cleared-dev/cardrecon/internal/model"
)

// BankParser converts the lines of one bank statement into a BankStatement.
// Lines it does not recognise are dropped.
type BankParser interface {
	ParseBank(lines []string) model.BankStatement
	Format() string
}

// HotelParser converts the lines of one hotel statement into a HotelStatement.
// Lines it does not recognise are reported in HotelStatement.Unmatched.
type HotelParser interface {
	ParseHotel(lines []string) model.HotelStatement
	Format() string
}

// Registry holds named statement parsers.
type Registry struct {
	bank  map[string]BankParser
	hotel map[string]HotelParser
}

// Options configures the built-in parsers.
type Options struct {
	GCCNETSuffixes []string
	Logger         *slog.Logger
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		bank:  make(map[string]BankParser),
		hotel: make(map[string]HotelParser),
	}
}

// RegisterBank adds a bank parser. Panics on duplicate format.
func (r *Registry) RegisterBank(p BankParser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.bank[key]; ok {
		panic("duplicate bank parser format: " + key)
	}
	r.bank[key] = p
}

// RegisterHotel adds a hotel parser. Panics on duplicate format.
func (r *Registry) RegisterHotel(p HotelParser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.hotel[key]; ok {
		panic("duplicate hotel parser format: " + key)
	}
	r.hotel[key] = p
}

// Bank returns the bank parser for format, or nil.
func (r *Registry) Bank(format string) BankParser {
	return r.bank[strings.ToLower(format)]
}

// Hotel returns the hotel parser for format, or nil.
func (r *Registry) Hotel(format string) HotelParser {
	return r.hotel[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(opts Options) *Registry {
	suffixes := opts.GCCNETSuffixes
	if suffixes == nil {
		suffixes = model.DefaultGCCNETSuffixes
	}
	r := NewRegistry()
	r.RegisterBank(NewSettlementParser(suffixes))
	r.RegisterHotel(&OperaParser{Logger: opts.Logger})
	return r
}
