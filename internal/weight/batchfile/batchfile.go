// Package batchfile parses the container-tare batch files accepted by
// POST /batch-weight: two/three-column CSV with unit auto-detection,
// and a JSON array of objects. This is the parsing contract only;
// transport (multipart upload, disk location) is the caller's concern.
package batchfile

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/weight/containers"
	"ganshmuel/platform/internal/weight/weighmath"
)

const MaxFileSizeBytes = 10 * 1024 * 1024

// lbsHeuristicThreshold: legacy two-column CSV rows carry no unit; a
// weight over this value is assumed to be pounds, per the original
// parser's heuristic (spec §4.2, §9). Callers SHOULD warn when this
// path is taken.
const lbsHeuristicThreshold = 500

// ResolvePath validates that the requested file path resolves inside
// baseDir, rejecting any attempt to traverse outside it.
func ResolvePath(baseDir, name string) (string, error) {
	clean := filepath.Clean(name)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", apperr.Validation("invalid file path %q", name)
	}
	full := filepath.Join(baseDir, clean)
	rel, err := filepath.Rel(baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", apperr.Validation("file path %q escapes the upload directory", name)
	}
	return full, nil
}

type ParseResult struct {
	Rows     []containers.BatchRow
	UsedHeuristic bool
}

// ParseCSV accepts 2-column (id,weight — unit auto-detected) or
// 3-column (id,weight,unit) CSV, with an optional header row detected
// by the presence of a non-numeric second field on the first line.
func ParseCSV(r io.Reader) (ParseResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return ParseResult{}, apperr.Validation("invalid csv: %v", err)
	}
	if len(records) == 0 {
		return ParseResult{}, apperr.Validation("csv file is empty")
	}

	start := 0
	if looksLikeHeader(records[0]) {
		start = 1
	}

	var result ParseResult
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 2 {
			continue
		}
		id := strings.TrimSpace(rec[0])
		weight, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			continue
		}

		unit := weighmath.Kg
		if len(rec) >= 3 && strings.TrimSpace(rec[2]) != "" {
			unit = strings.ToLower(strings.TrimSpace(rec[2]))
		} else {
			if weight > lbsHeuristicThreshold {
				unit = weighmath.Lbs
			}
			result.UsedHeuristic = true
		}

		result.Rows = append(result.Rows, containers.BatchRow{ID: id, Weight: weight, Unit: unit})
	}
	return result, nil
}

func looksLikeHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	return err != nil
}

type jsonRow struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
	Unit   string `json:"unit"`
}

// ParseJSON accepts an array of {id, weight, unit?}, defaulting unit
// to kg when absent.
func ParseJSON(r io.Reader) (ParseResult, error) {
	var rows []jsonRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return ParseResult{}, apperr.Validation("invalid json: %v", err)
	}
	var result ParseResult
	for _, row := range rows {
		unit := row.Unit
		if unit == "" {
			unit = weighmath.Kg
		}
		result.Rows = append(result.Rows, containers.BatchRow{ID: row.ID, Weight: row.Weight, Unit: unit})
	}
	return result, nil
}

// ParseByExtension dispatches to ParseCSV or ParseJSON based on the
// file name's extension, enforcing the size cap first.
func ParseByExtension(name string, size int64, r io.Reader) (ParseResult, error) {
	if size > MaxFileSizeBytes {
		return ParseResult{}, apperr.Validation("file exceeds %d byte limit", MaxFileSizeBytes)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(r)
	case ".json":
		return ParseJSON(r)
	default:
		return ParseResult{}, apperr.Validation("unsupported file extension %q", filepath.Ext(name))
	}
}
