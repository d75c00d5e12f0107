// Package rates implements the billing rate book: bulk replace/list,
// Excel import/export via excelize, and provider-over-ALL rate
// resolution for a given product.
package rates

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/billing/store"
)

const sheetName = "Rates"

type Service struct {
	repo *store.RateRepo
}

func New(repo *store.RateRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]store.Rate, error) {
	return s.repo.All(ctx)
}

// Resolve returns the applicable per-kg rate for a product, preferring
// a provider-specific rate row over the ALL-scoped default. It returns
// apperr.NotFound when no rate covers the product at all.
func (s *Service) Resolve(ctx context.Context, product string, providerID int64) (int, error) {
	rows, err := s.repo.ForProduct(ctx, product)
	if err != nil {
		return 0, err
	}
	return resolveFromRows(rows, product, providerID)
}

// resolveFromRows applies the provider-over-ALL precedence rule to an
// already-fetched set of candidate rate rows.
func resolveFromRows(rows []store.Rate, product string, providerID int64) (int, error) {
	providerScope := strconv.FormatInt(providerID, 10)

	var allRate *int
	var providerRate *int
	for _, row := range rows {
		amt := row.RateAmt
		switch {
		case row.Scope == providerScope:
			providerRate = &amt
		case strings.EqualFold(row.Scope, store.AllScope):
			allRate = &amt
		}
	}
	if providerRate != nil {
		return *providerRate, nil
	}
	if allRate != nil {
		return *allRate, nil
	}
	return 0, apperr.NotFound("no rate defined for product %q", product)
}

// ReplaceFromRows validates and atomically installs a new rate table
// from parsed (product, scope, rate) tuples.
func (s *Service) ReplaceFromRows(ctx context.Context, rows []store.Rate) error {
	for i, row := range rows {
		if strings.TrimSpace(row.Product) == "" {
			return apperr.Validation("row %d: product is required", i+1)
		}
		if !strings.EqualFold(row.Scope, store.AllScope) {
			if _, err := strconv.ParseInt(row.Scope, 10, 64); err != nil {
				return apperr.Validation("row %d: scope must be %q or a provider id", i+1, store.AllScope)
			}
		}
	}
	return s.repo.ReplaceAll(ctx, rows)
}

// ParseExcel reads an uploaded rate sheet. Expected columns (with a
// header row): Product, Rate, Scope. Fully empty rows are skipped; a
// rate written as a decimal is truncated to an integer. A malformed row
// aborts the whole batch rather than being skipped.
func ParseExcel(data []byte) ([]store.Rate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validation("could not read rate sheet: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rowsRaw, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.Validation("could not read rate sheet rows: %v", err)
	}
	if len(rowsRaw) < 2 {
		return nil, apperr.Validation("rate sheet has no data rows")
	}

	var out []store.Rate
	for i, row := range rowsRaw[1:] {
		if len(row) == 0 {
			continue
		}
		if len(row) < 3 {
			return nil, apperr.Validation("row %d: expected 3 columns, got %d", i+2, len(row))
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, apperr.Validation("row %d: rate %q is not a number", i+2, row[1])
		}
		out = append(out, store.Rate{
			Product: strings.TrimSpace(row[0]),
			RateAmt: int(rate),
			Scope:   strings.TrimSpace(row[2]),
		})
	}
	if len(out) == 0 {
		return nil, apperr.Validation("rate sheet has no data rows")
	}
	return out, nil
}

// WriteExcel renders the rate table back out, the inverse of
// ParseExcel, for download.
func WriteExcel(rows []store.Rate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)
	f.SetSheetRow(sheetName, "A1", &[]any{"Product", "Rate", "Scope"})
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(sheetName, cell, &[]any{row.Product, row.RateAmt, row.Scope})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
