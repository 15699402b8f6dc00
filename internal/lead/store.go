package lead

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// RowSource is the row-oriented backing store. pkg/sheets implements it;
// tests substitute an in-memory fake.
type RowSource interface {
	LoadRows(ctx context.Context, worksheet string) ([][]string, error)
	AppendRows(ctx context.Context, worksheet string, rows [][]string) error
	UpdateCell(ctx context.Context, worksheet string, row, col int, value string) error
}

// SearchTerm is one (location, category) discovery pair from the categories
// worksheet.
type SearchTerm struct {
	Location string
	Category string
}

// Store is the typed facade over the backing store. It is the only place
// that knows which worksheet leads live in and how rows map to Lead values.
type Store struct {
	src             RowSource
	leadsSheet      string
	categoriesSheet string
	log             *logrus.Entry
}

func NewStore(src RowSource, leadsSheet, categoriesSheet string, log *logrus.Logger) *Store {
	return &Store{
		src:             src,
		leadsSheet:      leadsSheet,
		categoriesSheet: categoriesSheet,
		log:             log.WithField("component", "leadstore"),
	}
}

// VerifySchema fails fast if the live worksheet header no longer matches the
// versioned column layout.
func (s *Store) VerifySchema(ctx context.Context) error {
	rows, err := s.src.LoadRows(ctx, s.leadsSheet)
	if err != nil {
		return fmt.Errorf("failed to load leads worksheet: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("leads worksheet %q is empty, expected a header row", s.leadsSheet)
	}
	return VerifyHeader(rows[0])
}

// LoadLeads returns a stable snapshot of every lead row in worksheet order.
func (s *Store) LoadLeads(ctx context.Context) ([]Lead, error) {
	rows, err := s.src.LoadRows(ctx, s.leadsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	leads := make([]Lead, 0, len(rows)-1)
	for i, row := range rows[1:] {
		leads = append(leads, FromRow(i+2, row))
	}
	return leads, nil
}

// AppendLeads batch-appends new leads after the last row.
func (s *Store) AppendLeads(ctx context.Context, leads []Lead) error {
	if len(leads) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, l.ToRow())
	}
	if err := s.src.AppendRows(ctx, s.leadsSheet, rows); err != nil {
		return fmt.Errorf("failed to append leads: %w", err)
	}
	s.log.Infof("appended %d leads", len(leads))
	return nil
}

// SetCell writes one cell of one lead row by semantic column.
func (s *Store) SetCell(ctx context.Context, row int, col Column, value string) error {
	return s.src.UpdateCell(ctx, s.leadsSheet, row, int(col), value)
}

// LoadSearchTerms reads the categories worksheet. Expected layout: a header
// row followed by Location / Categories columns; blank pairs are skipped.
func (s *Store) LoadSearchTerms(ctx context.Context) ([]SearchTerm, error) {
	rows, err := s.src.LoadRows(ctx, s.categoriesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	terms := make([]SearchTerm, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var location, category string
		if len(row) > 0 {
			location = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			category = strings.TrimSpace(row[1])
		}
		if location == "" || category == "" {
			continue
		}
		terms = append(terms, SearchTerm{Location: location, Category: category})
	}
	return terms, nil
}
